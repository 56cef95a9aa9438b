package services

import (
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"blogicum/internal/config"
)

func TestMailServiceDisabledWithoutConfig(t *testing.T) {
	s := NewMailService(config.SMTPConfig{Host: "smtp.example.com"}, t.TempDir())
	if s.Enabled {
		t.Fatal("Expected mail service to be disabled")
	}
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Error("send should not be called when disabled")
		return nil
	}
	s.SendCommentNotification("a@example.com", "boris", "Title", "text", "http://x/posts/1/")
}

func TestSendCommentNotification(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "email"), 0o755)
	tpl := `<p>{{.Commenter}} wrote on {{.PostTitle}}: {{.CommentText}} <a href="{{.PostLink}}">open</a></p>`
	os.WriteFile(filepath.Join(dir, "email", "notification.html"), []byte(tpl), 0o644)

	s := NewMailService(config.SMTPConfig{
		Host: "smtp.example.com", Port: "587", Username: "u", Password: "p", From: "blog@example.com",
	}, dir)

	sent := make(chan string, 1)
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		if addr != "smtp.example.com:587" || from != "blog@example.com" || to[0] != "anna@example.com" {
			t.Errorf("unexpected envelope addr=%s from=%s to=%v", addr, from, to)
		}
		sent <- string(msg)
		return nil
	}

	s.SendCommentNotification("anna@example.com", "boris", "Old town", "Nice <b>walk</b>", "http://x/posts/1/")

	select {
	case msg := <-sent:
		if !strings.Contains(msg, `Subject: boris commented on "Old town"`) {
			t.Errorf("subject missing in %q", msg)
		}
		if !strings.Contains(msg, "Nice &lt;b&gt;walk&lt;/b&gt;") {
			t.Errorf("comment text should be escaped, got %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not sent")
	}
}
