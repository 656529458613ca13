package main

import (
	"fmt"
	"time"

	"suntheme/internal/config"
	"suntheme/internal/solar"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var timesOpts struct {
	date string
	days int
}

var timesCmd = &cobra.Command{
	Use:   "times",
	Short: "Print sunrise and sunset for the configured location",
	RunE:  runTimes,
}

func init() {
	rootCmd.AddCommand(timesCmd)

	timesCmd.Flags().StringVar(&timesOpts.date, "date", "",
		"First date to print, YYYY-MM-DD (default today)")
	timesCmd.Flags().IntVar(&timesOpts.days, "days", 1,
		"Number of days to print")
}

func runTimes(cmd *cobra.Command, args []string) error {
	s := config.NewLoader(opts.ConfigPath, logger).Current()

	provider, err := solar.NewProvider(s.Algorithm, s.ZenithAngle, logger)
	if err != nil {
		return err
	}

	loc := s.Zone.Location()
	now := time.Now()
	start := now.In(loc)
	if timesOpts.date != "" {
		start, err = time.ParseInLocation(time.DateOnly, timesOpts.date, loc)
		if err != nil {
			return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", timesOpts.date)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%.4f, %.4f  %s  (%s, zenith %s)\n",
		s.Latitude, s.Longitude, s.Zone, provider.Name(), s.ZenithAngle.Name())

	for i := 0; i < timesOpts.days; i++ {
		y, m, d := start.AddDate(0, 0, i).Date()
		noon := time.Date(y, m, d, 12, 0, 0, 0, loc)

		times, err := provider.SunTimes(noon, s.Location(), s.Zone.OffsetHours(noon))
		if err != nil {
			return err
		}

		date := noon.Format("Mon 2006-01-02")
		if !times.HasEvents() {
			fmt.Fprintf(out, "%s  %v\n", date, times.Err())
			continue
		}

		sunrise := times.Sunrise.On(noon)
		sunset := times.Sunset.On(noon)
		fmt.Fprintf(out, "%s  sunrise %s (%s)  sunset %s (%s)\n",
			date,
			times.Sunrise, humanize.RelTime(sunrise, now, "ago", "from now"),
			times.Sunset, humanize.RelTime(sunset, now, "ago", "from now"))
	}

	if s.CollarMinutes != 0 {
		fmt.Fprintf(out, "collar: day starts %s before sunrise and ends %s after sunset\n", s.Collar(), s.Collar())
	}
	return nil
}
