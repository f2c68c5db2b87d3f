package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wkalt/msgdef/util"
)

func TestGroupBy(t *testing.T) {
	arr := []string{"std_msgs/String", "std_msgs/Header", "geometry_msgs/Point"}
	groups := util.GroupBy(arr, func(x string) int { return len(x) })
	assert.Equal(t, map[int][]string{
		15: {"std_msgs/String", "std_msgs/Header"},
		19: {"geometry_msgs/Point"},
	}, groups)
}

func TestParseNanos(t *testing.T) {
	tm := util.ParseNanos(1e9)
	assert.Equal(t, "1970-01-01 00:00:01 +0000 UTC", tm.UTC().String())
}

func TestOkeys(t *testing.T) {
	m := map[int]string{3: "c", 1: "a", 2: "b"}
	for i := 0; i < 1000; i++ {
		assert.Equal(t, []int{1, 2, 3}, util.Okeys(m))
	}
}

func TestHumanBytes(t *testing.T) {
	cases := []struct {
		assertion string
		input     uint64
		expected  string
	}{
		{"0 bytes", 0, "0 B"},
		{"1 byte", 1, "1 B"},
		{"50 bytes", 50, "50 B"},
		{"1 kilobyte", 1024, "1 KB"},
		{"1 megabyte", 1024 * 1024, "1 MB"},
		{"1 gigabyte", 1024 * 1024 * 1024, "1 GB"},
		{"1 exabyte", 1024 * 1024 * 1024 * 1024 * 1024 * 1024, "1 EB"},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, util.HumanBytes(c.input), c.assertion)
	}
}

func TestWhen(t *testing.T) {
	cases := []struct {
		assertion string
		cond      bool
		a         int
		b         int
		expected  int
	}{
		{"true", true, 1, 2, 1},
		{"false", false, 1, 2, 2},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, util.When(c.cond, c.a, c.b), c.assertion)
	}
}
