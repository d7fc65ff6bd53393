package cmd

import (
	"time"

	"github.com/oakwood-commons/treepick/internal/config"
	"github.com/oakwood-commons/treepick/internal/lazyview"
	"github.com/oakwood-commons/treepick/internal/search"
	"github.com/oakwood-commons/treepick/internal/server"
	"github.com/oakwood-commons/treepick/internal/session"
	"github.com/oakwood-commons/treepick/internal/ui"
)

func searchMode(s string) search.Mode {
	if s == "expression" {
		return search.ModeExpression
	}
	return search.ModeSubstring
}

func sessionOptions(cfg *config.Config) session.Options {
	return session.Options{
		Search: search.Options{
			MatchKey:   cfg.Search.MatchKey,
			MatchValue: cfg.Search.MatchValue,
			Mode:       searchMode(cfg.Search.Mode),
		},
		AutoSelectChildren: cfg.Selection.AutoSelectChildren,
		View: lazyview.Options{
			BatchThreshold: cfg.View.BatchThreshold,
			BatchSize:      cfg.View.BatchSize,
		},
		ExportIndent: cfg.Export.Indent,
	}
}

func uiOptions(cfg *config.Config) ui.Options {
	return ui.Options{
		Debounce:   time.Duration(cfg.Search.DebounceMs) * time.Millisecond,
		ValueWidth: cfg.View.ValueWidth,
		ExportPath: cfg.Export.FileName,
		ShowHelp:   cfg.View.ShowHelp,
	}
}

func serverOptions(cfg *config.Config) server.Options {
	return server.Options{
		Addr:           cfg.Server.Addr,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RateLimit:      cfg.Server.RateLimit,
		Burst:          cfg.Server.Burst,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeoutS) * time.Second,
		ExportFileName: cfg.Export.FileName,
		Session:        sessionOptions(cfg),
	}
}
