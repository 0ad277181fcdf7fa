package report

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMissingConfig(t *testing.T) {
	mailer := NewSmtpMailer(SmtpConfig{Server: "localhost"})
	err := mailer.Send(context.Background(), Report{Subject: "s", Body: "b"})
	require.ErrorContains(t, err, "smtp_port, sender_email, recipient_email")
}

func TestSmtpMailer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping smtp container in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	ctx := context.Background()
	smtp, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "haravich/fake-smtp-server",
			ExposedPorts: []string{"1025/tcp", "1080/tcp"},
			WaitingFor:   wait.ForLog("smtp://0.0.0.0:1025"),
		},
	})
	require.NoError(t, err)
	defer func() {
		err := smtp.Terminate(context.Background())
		if err != nil {
			t.Fatal(err)
		}
	}()

	host, err := smtp.Host(ctx)
	require.NoError(t, err)
	smtpPort, err := smtp.MappedPort(ctx, "1025")
	require.NoError(t, err)
	webPort, err := smtp.MappedPort(ctx, "1080")
	require.NoError(t, err)

	mailer := NewSmtpMailer(SmtpConfig{
		Server:     host,
		Port:       smtpPort.Int(),
		Sender:     "alice@email.com",
		SenderName: "Theater Watch",
		Recipients: []string{"bob@email.com"},
	})
	report, err := Build(Input{
		SubjectPrefix: "[Theater Updates] ",
		Date:          time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	err = mailer.Send(ctx, report)
	require.NoError(t, err)

	res, err := resty.New().R().
		Get(fmt.Sprintf("http://%s:%d/messages/1.plain", host, webPort.Int()))
	require.NoError(t, err)
	require.Contains(t, res.String(), "London Theater Updates - 04 Mar 2025")
	require.Contains(t, res.String(), "No new shows detected.")
}
