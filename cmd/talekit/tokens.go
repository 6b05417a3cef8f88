package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talekit/talekit/lexer"
)

func tokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream for a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			toks, diags := lexer.Tokenize(string(b))
			for _, tok := range toks {
				if tok.Lexeme != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%4d:%-3d %-14s %q\n", tok.Line, tok.Column, tok.Kind, tok.Lexeme)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%4d:%-3d %s\n", tok.Line, tok.Column, tok.Kind)
				}
			}
			for _, d := range diags {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", d)
			}
			return nil
		},
	}
}
