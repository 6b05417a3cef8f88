package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talekit/talekit"
	"github.com/talekit/talekit/ast"
)

func dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the parsed structure of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			script, diags := talekit.Parse(string(b))
			out := cmd.OutOrStdout()
			for _, node := range script.Nodes {
				fmt.Fprintf(out, "node %s (line %d)\n", node.Name, node.Line)
				for k, v := range node.Metadata {
					fmt.Fprintf(out, "  [%s: %s]\n", k, v)
				}
				dumpContent(out, node.Content, 1)
			}
			for _, d := range diags {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", d)
			}
			return nil
		},
	}
}

func dumpContent(w io.Writer, items []ast.ContentNode, depth int) {
	pad := strings.Repeat("  ", depth)
	for _, item := range items {
		switch n := item.(type) {
		case *ast.Dialogue:
			speaker := n.Speaker
			if speaker == "" {
				speaker = "(narration)"
			}
			fmt.Fprintf(w, "%sline %s%s: %s", pad, speaker, emotionSuffix(n.Emotion), segmentsText(n.Segments))
			if len(n.Tags) > 0 {
				fmt.Fprintf(w, " #%s", strings.Join(n.Tags, " #"))
			}
			fmt.Fprintln(w)
			dumpContent(w, n.Nested, depth+1)
		case *ast.Choice:
			guard := ""
			if n.Guard != nil {
				guard = " [guarded]"
			}
			fmt.Fprintf(w, "%schoice%s: %s\n", pad, guard, segmentsText(n.Segments))
			dumpContent(w, n.Content, depth+1)
		case *ast.Conditional:
			fmt.Fprintf(w, "%sif\n", pad)
			dumpContent(w, n.Then, depth+1)
			for _, br := range n.Elifs {
				fmt.Fprintf(w, "%selif\n", pad)
				dumpContent(w, br.Content, depth+1)
			}
			if n.HasElse {
				fmt.Fprintf(w, "%selse\n", pad)
				dumpContent(w, n.Else, depth+1)
			}
		case *ast.JumpCmd:
			fmt.Fprintf(w, "%sjump %s\n", pad, n.Target)
		case *ast.SetCmd:
			fmt.Fprintf(w, "%s%s $%s\n", pad, n.Op, n.Name)
		case *ast.CallCmd:
			fmt.Fprintf(w, "%scall\n", pad)
		case *ast.WaitCmd:
			fmt.Fprintf(w, "%swait\n", pad)
		default:
			fmt.Fprintf(w, "%s%T\n", pad, item)
		}
	}
}

func emotionSuffix(emotion string) string {
	if emotion == "" {
		return ""
	}
	return " (" + emotion + ")"
}

func segmentsText(segs []ast.TextSegment) string {
	var sb strings.Builder
	for _, seg := range segs {
		switch s := seg.(type) {
		case ast.TextLiteral:
			sb.WriteString(s.Text)
		case ast.TextInterp:
			sb.WriteString("{...}")
		}
	}
	return sb.String()
}
