package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gorewood/bmadflow/internal/output"
)

// newSaveCmd creates the save command.
func newSaveCmd() *cobra.Command {
	var outputFile, contentFile string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the current step's output",
		Long: `Persist the output of the current step to the workflow's artifact.

Content is read from --file, or from stdin when --file is "-" (the default).
It is appended to the artifact with a blank line, unless it already contains
the artifact's whole text, in which case it replaces it. Each step can be
saved once; run 'bmadflow next' before saving again.

Examples:
  bmadflow save --file section.md
  cat brief.md | bmadflow save --output docs/brief.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(a *app, printer *output.Printer) error {
				content, err := readContent(cmd.InOrStdin(), contentFile)
				if err != nil {
					return err
				}
				res, err := a.ctl.Save(a.project, content, outputFile)
				if err != nil {
					return err
				}
				return emit(printer, res, res.Text)
			})
		},
	}
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Artifact path (defaults to the workflow's output file)")
	cmd.Flags().StringVarP(&contentFile, "file", "f", "-", `File holding the content, or "-" for stdin`)
	return cmd
}

// readContent reads the artifact text from path, or from stdin for "-".
func readContent(stdin io.Reader, path string) (string, error) {
	if path == "-" || path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", output.NewSystemErrorWithCause("reading content from stdin", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", output.NewErrorWithCause(output.KindUsage, "cannot read content file "+path, err)
	}
	return string(data), nil
}
