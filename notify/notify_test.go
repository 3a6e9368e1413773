package notify

import (
	"context"
	"net"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"cafe-directory/config"
	"cafe-directory/models"

	"github.com/umakantv/go-utils/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})
	os.Exit(m.Run())
}

var sample = models.ContactMessage{
	Name:    "Ada",
	Email:   "ada@example.com",
	Phone:   "555-0100",
	Message: "Please add\nthe corner café.",
}

func TestNewSenderWithoutMail(t *testing.T) {
	if _, ok := NewSender(&config.Config{}).(LogSender); !ok {
		t.Fatal("NewSender() without credentials should log only")
	}
	cfg := &config.Config{MailAddress: "me@example.com", MailAppPassword: "pw", SMTPAddr: "smtp.example.com:587"}
	if _, ok := NewSender(cfg).(*SMTPSender); !ok {
		t.Fatal("NewSender() with credentials should mail")
	}
}

func TestLogSender(t *testing.T) {
	if err := (LogSender{}).Send(context.Background(), sample); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
}

func TestComposeStripsHeaderInjection(t *testing.T) {
	msg := sample
	msg.Email = "evil@example.com\r\nBcc: everyone@example.com"
	body := string(compose("me@example.com", "me@example.com", msg))

	if strings.Contains(body, "\r\nBcc:") {
		t.Errorf("compose() allowed an injected header:\n%s", body)
	}
	for _, want := range []string{"Subject: New Message", "Name: Ada", "Phone: 555-0100", "the corner café."} {
		if !strings.Contains(body, want) {
			t.Errorf("compose() missing %q", want)
		}
	}
}

// fakeSMTP answers one plain SMTP session and returns the DATA payload.
func fakeSMTP(t *testing.T, conn net.Conn, got chan<- string) {
	t.Helper()
	defer conn.Close()
	tp := textproto.NewConn(conn)

	reply := func(format string, args ...any) {
		if err := tp.PrintfLine(format, args...); err != nil {
			t.Errorf("fake smtp write: %v", err)
		}
	}

	reply("220 localhost ESMTP")
	var data string
	for {
		line, err := tp.ReadLine()
		if err != nil {
			got <- data
			return
		}
		cmd := strings.ToUpper(strings.Fields(line)[0])
		switch cmd {
		case "EHLO":
			reply("250-localhost")
			reply("250 8BITMIME")
		case "MAIL", "RCPT":
			reply("250 OK")
		case "DATA":
			reply("354 go ahead")
			b, err := tp.ReadDotBytes()
			if err != nil {
				t.Errorf("fake smtp data: %v", err)
			}
			data = string(b)
			reply("250 queued")
		case "QUIT":
			reply("221 bye")
			got <- data
			return
		default:
			reply("502 unsupported")
		}
	}
}

func TestSMTPSenderDeliversMessage(t *testing.T) {
	client, server := net.Pipe()
	got := make(chan string, 1)
	go fakeSMTP(t, server, got)

	s := NewSMTPSender("localhost:25", "owner@example.com", "")
	s.dial = func(context.Context, string, string) (net.Conn, error) { return client, nil }

	if err := s.Send(context.Background(), sample); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	data := <-got
	for _, want := range []string{"To: owner@example.com", "Reply-To: ada@example.com", "Email: ada@example.com"} {
		if !strings.Contains(data, want) {
			t.Errorf("mailed data missing %q:\n%s", want, data)
		}
	}
}

func TestSMTPSenderBadAddress(t *testing.T) {
	s := NewSMTPSender("no-port", "owner@example.com", "pw")
	if err := s.Send(context.Background(), sample); err == nil {
		t.Fatal("Send() with an address lacking a port should fail")
	}
}
