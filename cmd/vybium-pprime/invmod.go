package main

import (
	"fmt"
	"io"
	"math/big"

	"github.com/spf13/cobra"

	vybiumnumtheory "github.com/vybium/vybium-numtheory/pkg/vybium-numtheory"
)

func newInvModCmd(out io.Writer) *cobra.Command {
	var canonical bool

	cmd := &cobra.Command{
		Use:   "invmod A B",
		Short: "Print the inverse of A modulo B",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ok := new(big.Int).SetString(args[0], 0)
			if !ok {
				return fmt.Errorf("invalid integer %q", args[0])
			}
			b, ok := new(big.Int).SetString(args[1], 0)
			if !ok {
				return fmt.Errorf("invalid integer %q", args[1])
			}

			inverse := vybiumnumtheory.ModInverse
			if canonical {
				inverse = vybiumnumtheory.ModInverseCanonical
			}
			c, err := inverse(a, b)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, c)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&canonical, "canonical", "c", false, "reduce the result into [0, |B|)")
	return cmd
}
