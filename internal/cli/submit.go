package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/community-site/internal/form"
	"github.com/pfrederiksen/community-site/internal/pages"
)

var (
	flagFields []string
	flagFiles  []string
	flagWait   time.Duration
)

func newSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <page>",
		Short: "Fill in and submit a page form",
		Long: `Fills the page's form with --field and --file values, submits it the
way a visitor would (client-side checks included) and reports the feedback the
page shows. Exits 2 when the page reports an error.`,
		Example: `  community-site submit join --field name=Alex --field email=alex@example.com --file photo=me.jpg
  community-site submit events --field event_name="Trivia" ... --wait 2s`,
		Args: cobra.ExactArgs(1),
		RunE: runSubmit,
	}
	cmd.Flags().StringArrayVar(&flagFields, "field", nil, "Form value as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&flagFiles, "file", nil, "File input as name=path (repeatable)")
	cmd.Flags().DurationVar(&flagWait, "wait", 0, "Wait this long for delayed page updates before reporting")
	return cmd
}

func runSubmit(cmd *cobra.Command, args []string) error {
	format, _ := outputFormat()
	name := args[0]
	if pages.FormSelector(name) == "" {
		return fmt.Errorf("page %q has no form", name)
	}

	data, err := buildFormData(flagFields, flagFiles)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	store, err := a.storage(false)
	if err != nil {
		return err
	}
	pc, err := store.LoadContext(cmd.Context(), name)
	if err != nil {
		return err
	}
	p, err := pages.Init(cmd.Context(), name, pc, a.deps)
	if err != nil {
		return err
	}
	defer p.Teardown()

	if err := p.Fill(data); err != nil {
		return err
	}
	if flagWait > 0 {
		time.Sleep(flagWait)
	}

	result := &SubmitResult{Page: name, Alerts: pc.Alerts()}
	result.Feedback, result.State = p.Feedback()

	if err := WriteSubmit(cmd.OutOrStdout(), result, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if result.Rejected() {
		return &CodeError{Code: ExitRejected}
	}
	return nil
}

func buildFormData(fields, files []string) (form.Data, error) {
	var data form.Data
	for _, f := range fields {
		name, value, ok := form.ParseAssignment(f)
		if !ok {
			return nil, fmt.Errorf("invalid --field %q (want name=value)", f)
		}
		data.Add(name, value)
	}
	for _, f := range files {
		name, path, ok := form.ParseAssignment(f)
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid --file %q (want name=path)", f)
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		data.AddFile(name, &form.File{
			Name:        filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Data:        body,
		})
	}
	return data, nil
}
