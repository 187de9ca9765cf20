// -- cmd/sectors.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/chakram-cli/internal/sector"
)

// sectorsCmd prints the resolved angular table and key bindings. Useful for
// checking a config file before pointing it at a game.
var sectorsCmd = &cobra.Command{
	Use:   "sectors",
	Short: "Print the validated sector table and key bindings.",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := appConfig.SectorTable()
		if err != nil {
			return err
		}
		transitionCfg, err := appConfig.Transition()
		if err != nil {
			return err
		}

		fmt.Printf("deadzone: %.3f\n\n", appConfig.Deadzone())
		fmt.Printf("%-10s %-14s %s\n", "sector", "range", "key")
		for _, s := range sector.Directional() {
			r := table[s]
			wrap := ""
			if r.Start > r.End {
				wrap = " (wraps 0°)"
			}
			fmt.Printf("%-10s %5.0f°–%-5.0f°%s  %s\n", s, r.Start, r.End, wrap, transitionCfg.Keys[s])
		}
		fmt.Printf("\ncancel key: %s\n", transitionCfg.CancelKey)

		alt := appConfig.AltMode()
		fmt.Printf("alt mode:   key=%s button=%s offset=%d deadzone×%.2f\n",
			alt.Key, alt.MouseButton, alt.CursorOffset, alt.DeadzoneFactor)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sectorsCmd)
}
