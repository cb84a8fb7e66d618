package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sourcing-advisor/internal/domain"
	"sourcing-advisor/internal/extract"
	"sourcing-advisor/internal/page"
	"sourcing-advisor/internal/scan"
)

var scanWatch bool

var scanCmd = &cobra.Command{
	Use:   "scan <snapshot.html>",
	Short: "Scan one captured page against the rule set",
	Long: `Scans an HTML snapshot of a profile or search-results page and prints the
advisory. With --watch, keeps scanning as the capture file is rewritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanWatch, "watch", false, "keep scanning as the snapshot changes")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := page.Open(args[0])
	if err != nil {
		return err
	}
	defer doc.Close()

	src := scan.NewCacheSource(a.cache, a.hub)
	defer src.Close()
	renderer := consoleRenderer{hub: a.hub}

	if extract.IsListURL(doc.URL()) {
		ls := &scan.ListScanner{
			Doc:          doc,
			Rules:        src,
			Renderer:     renderer,
			CardSelector: a.cfg.Scan.CardSelector,
			MinCardChars: a.cfg.Scan.MinCardChars,
			Staleness:    time.Duration(a.cfg.Scan.StalenessSeconds) * time.Second,
		}
		if scanWatch {
			ctx, stop := signalContext()
			defer stop()
			ls.Run(ctx)
			return nil
		}
		ls.Reset(doc.URL())
		ls.ScanOnce()
		if n := ls.PendingCount(); n > 0 {
			fmt.Printf("%d cards had no content yet; use --watch for progressively rendered lists\n", n)
		}
		return nil
	}

	var last recordedStatus
	ps := &scan.PageScanner{
		Doc:      doc,
		Rules:    src,
		Renderer: renderer,
		Status:   &last,
	}
	if scanWatch {
		ctx, stop := signalContext()
		defer stop()
		ps.Run(ctx)
		return nil
	}
	ps.Navigate(doc.URL())
	ps.ScanOnce()

	if last.st == nil {
		fmt.Println("page is not a profile view; nothing to scan")
		return nil
	}
	if last.st.Status == domain.ScanNoData {
		return fmt.Errorf("unable to read profile from %s", args[0])
	}
	return nil
}

// recordedStatus keeps the final push so one-shot mode can set the exit code.
type recordedStatus struct {
	st *domain.ScanStatus
}

func (r *recordedStatus) Push(st domain.ScanStatus) { r.st = &st }

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
