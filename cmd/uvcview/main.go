package main

import (
	"github.com/Paintersrp/uvcview/internal/cli"
	"github.com/Paintersrp/uvcview/internal/metrics"
)

func main() {
	metrics.EmitBuildInfo()
	cli.Execute()
}
