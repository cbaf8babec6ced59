// historic-export descarga el histórico de acciones desde la API y lo
// guarda como hoja de cálculo.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"nursery-care-log/internal/adapters/api/actionsapi"
	"nursery-care-log/internal/adapters/storage/memory"
	"nursery-care-log/internal/domain/actions"
	"nursery-care-log/internal/domain/historic"
	"nursery-care-log/internal/platform/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "historic-export:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := config.Load()
	log := cfg.Logger()

	fs := flag.NewFlagSet("historic-export", flag.ContinueOnError)
	nursery := fs.String("nursery", "", "IDs de guardería separados por coma")
	children := fs.String("children", "", "IDs de niño separados por coma")
	kinds := fs.String("kinds", "", "tipos de acción separados por coma")
	from := fs.String("from", "", "inicio mínimo (RFC3339 o YYYY-MM-DD)")
	to := fs.String("to", "", "inicio máximo (RFC3339 o YYYY-MM-DD)")
	out := fs.String("out", "historic.xlsx", "fichero de salida")
	all := fs.Bool("all", false, "exportar todo el resultado, no solo la primera ventana")
	namesPath := fs.String("names", "", "JSON con nombres de niños y agentes (opcional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filters, err := buildFilters(*nursery, *children, *kinds, *from, *to, cfg.DisplayLocation)
	if err != nil {
		return err
	}

	client, err := actionsapi.NewClient(actionsapi.Config{
		BaseURL: cfg.ActionsAPIURL,
		Token:   cfg.ActionsAPIToken,
		Timeout: cfg.HTTPTimeout,
	})
	if errors.Is(err, actionsapi.ErrNotConfigured) {
		return errors.New("ACTIONS_API_URL is required")
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine := historic.NewEngine(client, cfg.HistoricWindowSize, log).WithLocation(cfg.DisplayLocation)
	if *namesPath != "" {
		dir, err := loadDirectory(*namesPath)
		if err != nil {
			return err
		}
		engine.WithNames(dir)
	}
	if err := engine.ApplyFilters(ctx, filters); err != nil {
		return err
	}
	if *all {
		for engine.RevealMore() {
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := engine.ExportXLSX(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	vm := engine.View()
	log.Info("historic exported", map[string]any{"file": *out, "rows": len(vm.Items), "total": vm.Total})
	return nil
}

func loadDirectory(path string) (*memory.Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return memory.LoadDirectory(f)
}

func buildFilters(nursery, children, kinds, from, to string, loc *time.Location) (historic.Filters, error) {
	f := historic.Filters{
		NurseryIDs: splitList(nursery),
		ChildIDs:   splitList(children),
	}
	for _, raw := range splitList(kinds) {
		k, ok := actions.ParseKind(raw)
		if !ok {
			return f, fmt.Errorf("unknown kind %q", raw)
		}
		f.Kinds = append(f.Kinds, k)
	}

	var err error
	if f.From, err = parseBound(from, loc, false); err != nil {
		return f, fmt.Errorf("-from: %w", err)
	}
	if f.To, err = parseBound(to, loc, true); err != nil {
		return f, fmt.Errorf("-to: %w", err)
	}
	return f, nil
}

// parseBound acepta RFC3339 o una fecha; con fecha, -to cubre el día entero.
func parseBound(v string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation("2006-01-02", v, loc)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		d = d.AddDate(0, 0, 1).Add(-time.Second)
	}
	return &d, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
