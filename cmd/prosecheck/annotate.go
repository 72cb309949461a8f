package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"prosecheck/internal/annotation"
	"prosecheck/internal/source"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <file>",
	Short: "Print the annotation sent to LanguageTool for a markdown file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotate,
}

func init() {
	annotateCmd.Flags().Bool("text", false, "print only the checked text instead of the annotation JSON")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	textOnly, err := cmd.Flags().GetBool("text")
	if err != nil {
		return err
	}
	doc, err := source.ReadFile(args[0])
	if err != nil {
		return err
	}
	segs, err := annotation.FromMarkdown(doc.Text())
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	out := cmd.OutOrStdout()
	if textOnly {
		_, err = fmt.Fprint(out, annotation.Checkable(segs))
		return err
	}
	data, err := annotation.Encode(segs)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(out)
	return err
}
