package cli

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskflow/internal/interchange"
)

func (c *CLI) exportCmd() *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every task as JSON or CSV",
		Long: `Export every task. Without --out the data goes to stdout; an --out
directory receives a dated file such as tasks-2024-06-15.csv.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.engine(cmd)
			if err != nil {
				return err
			}
			f, err := interchange.ParseFormat(format)
			if err != nil {
				return err
			}
			tasks := a.Tasks.List(cmd.Context())

			if out == "" || out == "-" {
				return a.Codec.Encode(cmd.OutOrStdout(), f, tasks)
			}
			path := out
			if info, err := os.Stat(out); err == nil && info.IsDir() {
				path = filepath.Join(out, interchange.FileName(f, time.Now().In(a.Location)))
			}
			file, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := a.Codec.Encode(file, f, tasks); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			cmd.PrintErrf("Exported %d task(s) to %s\n", len(tasks), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(interchange.FormatJSON), "json or csv")
	cmd.Flags().StringVar(&out, "out", "", "Output file or directory")
	return cmd
}

func (c *CLI) importCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import tasks from a JSON or CSV file",
		Long: `Import tasks from a file ("-" reads stdin). The format follows the file
extension unless --format is given. Imported tasks are appended; ids that
are missing or already taken are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.engine(cmd)
			if err != nil {
				return err
			}
			p, err := c.printer(cmd)
			if err != nil {
				return err
			}

			contentType := ""
			if format != "" {
				f, err := interchange.ParseFormat(format)
				if err != nil {
					return err
				}
				contentType = f.ContentType()
			}

			var r io.Reader = cmd.InOrStdin()
			name := args[0]
			if name != "-" {
				file, err := os.Open(name)
				if err != nil {
					return err
				}
				defer file.Close()
				r = file
			}

			records, f, err := a.Codec.Import(contentType, name, r)
			if err != nil {
				return err
			}
			imported, err := a.Tasks.Import(cmd.Context(), records)
			if err != nil {
				return err
			}
			if ok, err := p.structured(map[string]interface{}{"format": f, "imported": len(imported)}); ok {
				return err
			}
			p.printf("Imported %d task(s) from %s\n", len(imported), f)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or csv (default: from the file extension)")
	return cmd
}
