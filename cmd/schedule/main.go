// Command schedule runs the schedule generator on a YAML scenario file and
// prints the ranking and the chosen sections.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/config"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/scenario"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/scheduling"
)

func main() {
	ranking := flag.Bool("ranking", false, "also print every ranked candidate")
	maxSections := flag.Int("max", 0, "override the number of sections to pick")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] scenario.yaml\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		color.Yellow("env: %v", err)
	}

	sc, err := scenario.LoadFile(flag.Arg(0))
	if err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
	req, err := sc.Request()
	if err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
	if len(req.Equivalencies) == 0 {
		req.Equivalencies = config.LoadScheduleConfig().Equivalencies
	}
	if *maxSections > 0 {
		req.MaxSections = *maxSections
	}

	res := scheduling.GetSchedule(req)
	color.Cyan("\n=== %s, %s ===", req.Degree.Name, sc.Semester)

	color.Yellow("\nRequirements")
	scenario.WriteRequirements(os.Stdout, res.Requirements, scheduling.NeedRemaining(res.Requirements, req.Taken))

	if *ranking {
		color.Yellow("\nRanked sections")
		scenario.WriteRanking(os.Stdout, res.Ranked)
	}

	color.Yellow("\nSchedule")
	if len(res.Schedule.Entries) == 0 {
		color.Red("No section covers an unmet requirement.")
		return
	}
	scenario.WriteSchedule(os.Stdout, res.Schedule)
	limit := req.MaxSections
	if limit <= 0 {
		limit = scheduling.MaxScheduleSections
	}
	color.Green("%d of at most %d sections picked.", len(res.Schedule.Entries), limit)
}
