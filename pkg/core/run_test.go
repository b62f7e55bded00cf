package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRun_FileStem(t *testing.T) {
	start := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		run  Run
		want string
	}{
		{"uuid is shortened", Run{ID: "3f1c9a0e-7d2b-4c11-9e55-0123456789ab", ScenarioName: "ring road", StartTime: start}, "ring_road_20240115_103000_3f1c9a0e"},
		{"short id kept", Run{ID: "r1", ScenarioName: "a:b/c", StartTime: start}, "a_b_c_20240115_103000_r1"},
		{"no id", Run{StartTime: start}, "run_20240115_103000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.run.FileStem())
		})
	}

	a := Run{ID: "aaaaaaaa-1", ScenarioName: "same", StartTime: start}
	b := Run{ID: "bbbbbbbb-1", ScenarioName: "same", StartTime: start}
	assert.NotEqual(t, a.FileStem(), b.FileStem())
}
