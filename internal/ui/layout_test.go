package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/rdq-notify/internal/model"
)

func TestHeaderStatus(t *testing.T) {
	stats := model.NotificationStats{UnreadCount: 3, CriticalCount: 1, TotalCount: 12}

	tests := []struct {
		name  string
		state SyncState
		want  string
	}{
		{name: "idle", want: "3 unread · 1 critical · 12 total"},
		{name: "polling", state: SyncState{Polling: true}, want: "3 unread · 1 critical · 12 total · live"},
		{name: "loading", state: SyncState{Loading: true, Spinner: "*"}, want: "* 3 unread · 1 critical · 12 total"},
		{name: "spinner ignored when idle", state: SyncState{Spinner: "*"}, want: "3 unread · 1 critical · 12 total"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeaderStatus(stats, tt.state); got != tt.want {
				t.Errorf("HeaderStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderHeaderFillsWidth(t *testing.T) {
	l := NewLayout(100, 30)
	header := l.RenderHeader(model.NotificationStats{UnreadCount: 2, TotalCount: 5}, SyncState{})

	if !strings.Contains(header, Title) || !strings.Contains(header, "2 unread") {
		t.Errorf("header = %q", header)
	}
	if w := lipgloss.Width(header); w != 100 {
		t.Errorf("header width = %d, want 100", w)
	}
}

func TestRenderStatusBar(t *testing.T) {
	l := NewLayout(80, 24)

	tests := []struct {
		name               string
		err, notice, hints string
		want, wantAbsent   string
	}{
		{name: "hints", hints: "q quit", want: "q quit"},
		{name: "notice over hints", notice: "2 preference(s) updated", hints: "q quit", want: "updated", wantAbsent: "q quit"},
		{name: "error over notice", err: "store down", notice: "saved", hints: "q quit", want: "store down", wantAbsent: "saved"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := l.RenderStatusBar(tt.err, tt.notice, tt.hints)
			if !strings.Contains(bar, tt.want) {
				t.Errorf("bar = %q, want it to contain %q", bar, tt.want)
			}
			if tt.wantAbsent != "" && strings.Contains(bar, tt.wantAbsent) {
				t.Errorf("bar = %q, should not contain %q", bar, tt.wantAbsent)
			}
		})
	}

	if bar := l.RenderStatusBar("store down", "", ""); !strings.Contains(bar, "e to dismiss") {
		t.Errorf("error banner = %q", bar)
	}
}

func TestContentHeight(t *testing.T) {
	if got := NewLayout(80, 24).ContentHeight(); got != 22 {
		t.Errorf("ContentHeight = %d, want 22", got)
	}
}
