package cmd

import (
	"github.com/spf13/cobra"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/billing"
)

var (
	readingName       string
	readingPrice      string
	readingStart      string
	readingEnd        string
	readingCorrection string
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculate the billed amount for a reading",
	Long:  "Calculate unit_price * ((end - start) - correction) without saving anything",
	RunE:  runCalc,
}

func init() {
	addReadingFlags(calcCmd)
}

func addReadingFlags(c *cobra.Command) {
	c.Flags().StringVarP(&readingName, "name", "n", "", "Meter (customer) name")
	c.Flags().StringVarP(&readingPrice, "price", "p", "", "Unit price per kWh")
	c.Flags().StringVarP(&readingStart, "start", "s", "", "Start index")
	c.Flags().StringVarP(&readingEnd, "end", "e", "", "End index")
	c.Flags().StringVarP(&readingCorrection, "correction", "c", "0", "Correction subtracted from the index difference")
}

func parseReadingFlags() (billing.Reading, error) {
	return billing.ParseReading(readingName, readingPrice, readingStart, readingEnd, readingCorrection)
}

func runCalc(cmd *cobra.Command, args []string) error {
	reading, err := parseReadingFlags()
	if err != nil {
		return err
	}

	printf(cmd, "%s\n", billing.Summary(reading.Name, reading.Total()))
	return nil
}
