package cmd

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sourcing-advisor/internal/extract"
	"sourcing-advisor/internal/httpapi"
	"sourcing-advisor/internal/notify"
	"sourcing-advisor/internal/page"
	"sourcing-advisor/internal/scan"
	"sourcing-advisor/internal/scheduler"
	"sourcing-advisor/internal/secrets"
)

var serveSnapshot string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin API, rule sync, and (optionally) a live snapshot scanner",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveSnapshot, "snapshot", "", "HTML snapshot file to scan continuously")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanVal := &atomic.Value{}
	scanVal.Store(httpapi.ScanSnapshot{})

	syncFn := a.remoteSync()
	if syncFn != nil {
		interval := time.Duration(a.cfg.RuleStore.RefreshSeconds) * time.Second
		go scheduler.Every(ctx, interval, "rulesync", syncFn)
	}

	if serveSnapshot != "" {
		if err := a.watchSnapshot(ctx, serveSnapshot, scanVal); err != nil {
			return err
		}
	}

	deps := httpapi.Deps{
		Rules:       a.cache,
		Hub:         a.hub,
		CfgVal:      a.cfgVal,
		ScanStatus:  scanVal,
		UserCfgPath: a.cfgPath,
		LoadCfg:     a.loadConfig,
		SyncRules:   syncFn,
	}
	mux := httpapi.NewMux(deps)

	addr := fmt.Sprintf("127.0.0.1:%d", a.cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           httpapi.Chain(mux, httpapi.Cors, httpapi.RequestID, httpapi.Recover, httpapi.AccessLog),
		ReadHeaderTimeout: 5 * time.Second,
	}

	token, err := randomToken(16)
	if err != nil {
		return err
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))
	log.Printf("[serve] shutdown token: %s", token)
	log.Printf("[serve] advisor listening on http://%s", addr)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// watchSnapshot attaches the right scanner for the snapshot's URL shape and
// runs it until ctx is done.
func (a *app) watchSnapshot(ctx context.Context, path string, scanVal *atomic.Value) error {
	doc, err := page.Open(path)
	if err != nil {
		return err
	}

	var mailer *notify.Mailer
	if a.cfg.Notify.Enabled {
		mailer = a.newMailer()
	}

	src := scan.NewCacheSource(a.cache, a.hub)
	renderer := consoleRenderer{hub: a.hub, mailer: mailer}

	go func() {
		defer doc.Close()
		defer src.Close()

		if extract.IsListURL(doc.URL()) {
			ls := &scan.ListScanner{
				Doc:            doc,
				Rules:          src,
				Renderer:       renderer,
				CardSelector:   a.cfg.Scan.CardSelector,
				MinCardChars:   a.cfg.Scan.MinCardChars,
				Staleness:      time.Duration(a.cfg.Scan.StalenessSeconds) * time.Second,
				Quiet:          time.Duration(a.cfg.Scan.QuietMS) * time.Millisecond,
				MaxWait:        time.Duration(a.cfg.Scan.MaxWaitMS) * time.Millisecond,
				SafetyInterval: time.Duration(a.cfg.Scan.SafetySeconds) * time.Second,
			}
			// list mode reports per-card through badges; expose the pending
			// count through the /status snapshot
			scanVal.Store(httpapi.ScanSnapshot{URL: doc.URL(), Variant: "list"})
			go mirrorPending(ctx, scanVal, doc.URL, ls.PendingCount)
			ls.Run(ctx)
			return
		}

		ps := &scan.PageScanner{
			Doc:          doc,
			Rules:        src,
			Renderer:     renderer,
			Status:       &hubStatus{val: scanVal, hub: a.hub, url: doc.URL},
			Quiet:        time.Duration(a.cfg.Scan.QuietMS) * time.Millisecond,
			MaxWait:      time.Duration(a.cfg.Scan.MaxWaitMS) * time.Millisecond,
			PollInterval: time.Duration(a.cfg.Scan.URLPollMS) * time.Millisecond,
		}
		ps.Run(ctx)
	}()
	return nil
}

func mirrorPending(ctx context.Context, scanVal *atomic.Value, url func() string, pending func() int) {
	t := time.NewTicker(2 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			scanVal.Store(httpapi.ScanSnapshot{
				LastScanAt:   time.Now().Format(time.RFC3339),
				URL:          url(),
				Variant:      "list",
				PendingCards: pending(),
			})
		}
	}
}

func (a *app) newMailer() *notify.Mailer {
	n := a.cfg.Notify
	password, err := secrets.GetSMTPPassword(secrets.SMTPAccount(n.Username))
	if err != nil {
		log.Printf("[notify] disabled: %v", err)
		return nil
	}
	return notify.NewMailer(notify.Config{
		SMTPHost: n.SMTPHost,
		SMTPPort: n.SMTPPort,
		Username: n.Username,
		Password: password,
		From:     n.From,
		To:       n.To,
	})
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownHandler lets the desktop shell stop the engine cleanly: local
// callers only, guarded by the per-run token.
func shutdownHandler(token *string, srv *http.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if host != "127.0.0.1" && host != "::1" && host != "localhost" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(*token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}
}
