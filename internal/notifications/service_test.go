package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bindery/internal/notifications"
	"bindery/internal/testsupport"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(cfg)
	if err := svc.NotifyBuildCompleted(context.Background(), 10, 10, 0, time.Minute); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "build started",
			notify: func(svc notifications.Service) error {
				return svc.NotifyBuildStarted(context.Background(), 120, 14)
			},
			expectTitle:   "Bindery - Build Started",
			expectMessage: "Building catalog: 120 records, 14 to look up",
			expectTags:    "bindery,build,started",
		},
		{
			name: "build completed clean",
			notify: func(svc notifications.Service) error {
				return svc.NotifyBuildCompleted(context.Background(), 120, 14, 0, 17*time.Second)
			},
			expectTitle:   "Bindery - Build Complete",
			expectMessage: "Catalog built: 120 records in 17s",
			expectTags:    "bindery,build,completed",
		},
		{
			name: "build completed with failures",
			notify: func(svc notifications.Service) error {
				return svc.NotifyBuildCompleted(context.Background(), 120, 12, 2, 17*time.Second)
			},
			expectTitle:   "Bindery - Build Complete (with errors)",
			expectMessage: "Catalog built: 120 records, 12 lookups succeeded, 2 failed in 17s",
			expectTags:    "bindery,build,completed",
		},
		{
			name: "build failed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyBuildFailed(context.Background(), errors.New("more than half of attempted lookups failed"))
			},
			expectTitle:    "Bindery - Build Failed",
			expectMessage:  "Build failed: more than half of attempted lookups failed",
			expectTags:     "bindery,error,alert",
			expectPriority: "high",
		},
		{
			name: "test notification",
			notify: func(svc notifications.Service) error {
				return svc.TestNotification(context.Background())
			},
			expectTitle:    "Bindery - Test",
			expectMessage:  "Notification system test",
			expectTags:     "bindery,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := testsupport.NewConfig(t)
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed notification: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.BuildCompleted = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(cfg)
	if err := svc.NotifyBuildStarted(context.Background(), 10, 2); err != nil {
		t.Fatalf("expected no error for suppressed notification, got %v", err)
	}
	if err := svc.NotifyBuildCompleted(context.Background(), 10, 2, 0, time.Second); err != nil {
		t.Fatalf("expected no error for suppressed notification, got %v", err)
	}
	if err := svc.NotifyBuildFailed(context.Background(), errors.New("boom")); err != nil {
		t.Fatalf("expected no error for suppressed notification, got %v", err)
	}
}
