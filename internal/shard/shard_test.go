package shard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartition_Deterministic(t *testing.T) {
	p := New(8)

	for i := range 200 {
		path := fmt.Sprintf("/usr/share/applications/app-%d.desktop", i)
		first := p.Partition(path)
		assert.Equal(t, first, p.Partition(path))
		assert.GreaterOrEqual(t, first, 0)
		assert.Less(t, first, 8)
	}
}

func TestPartition_CleansPath(t *testing.T) {
	p := New(16)
	assert.Equal(t, p.Partition("/usr/bin/htop"), p.Partition("/usr/bin//htop"))
	assert.Equal(t, p.Partition("/usr/bin/htop"), p.Partition("/usr/bin/./htop"))
}

func TestPartition_Spreads(t *testing.T) {
	p := New(4)
	seen := make(map[int]bool)
	for i := range 100 {
		seen[p.Partition(fmt.Sprintf("/usr/bin/tool-%d", i))] = true
	}
	assert.Len(t, seen, 4)
}

func TestNew_MinimumWidth(t *testing.T) {
	assert.Equal(t, 1, New(0).Width)
	assert.Equal(t, 1, New(-3).Width)
	assert.Equal(t, 0, New(0).Partition("/anything"))
}
