package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/community-site/internal/logger"
	"github.com/pfrederiksen/community-site/internal/pages"
)

var flagSave bool

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <page>",
		Short: "Render a page after its controller has run",
		Long: `Loads the page template, attaches its controller (lists are fetched
from the API) and prints the resulting HTML, or saves it with --save.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: pages.Names(),
		RunE:      runRender,
	}
	cmd.Flags().BoolVar(&flagSave, "save", false, "Write the page to the output directory instead of stdout")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	format, _ := outputFormat()
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	store, err := a.storage(flagSave)
	if err != nil {
		return err
	}

	name := args[0]
	pc, err := store.LoadContext(cmd.Context(), name)
	if err != nil {
		return err
	}
	p, err := pages.Init(cmd.Context(), name, pc, a.deps)
	if err != nil {
		return err
	}
	defer p.Teardown()

	result := &RenderResult{Page: name}
	if flagSave {
		var path string
		pc.Exclusive(func() { path, err = store.Save(name, pc) })
		if err != nil {
			return fmt.Errorf("saving page: %w", err)
		}
		result.Path = path
		a.log.Debug("Saved page", logger.Fields{"page": name, "path": path})
	} else {
		pc.Exclusive(func() { result.HTML, err = pc.HTML() })
		if err != nil {
			return fmt.Errorf("rendering page: %w", err)
		}
	}

	return WriteRender(cmd.OutOrStdout(), result, format)
}

// WriteRender writes a render result. Text output is the bare HTML, or the
// saved path.
func WriteRender(w io.Writer, result *RenderResult, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, result)
	}
	if result.Path != "" {
		_, err := fmt.Fprintf(w, "Saved %s to %s\n", result.Page, result.Path)
		return err
	}
	_, err := io.WriteString(w, result.HTML)
	return err
}
