//go:build !unix

package monitor

import "time"

func cpuTime() time.Duration { return 0 }

func maxRSSMB() float64 { return 0 }
