package debug

import (
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Extract  bool
	Classify bool
	Emit     bool
	Load     bool
}

var d *debug

func init() {
	d = &debug{}
	all := boolEnv("SCHEMAGEN_DEBUG")
	d.Extract = all || boolEnv("SCHEMAGEN_DEBUG_EXTRACT")
	d.Classify = all || boolEnv("SCHEMAGEN_DEBUG_CLASSIFY")
	d.Emit = all || boolEnv("SCHEMAGEN_DEBUG_EMIT")
	d.Load = all || boolEnv("SCHEMAGEN_DEBUG_LOAD")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Extract() bool {
	return d.Extract
}
func Classify() bool {
	return d.Classify
}
func Emit() bool {
	return d.Emit
}
func Load() bool {
	return d.Load
}

func Logf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg, args...)
}
