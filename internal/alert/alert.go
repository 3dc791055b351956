// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package alert sends mail alerts to the shift crew.
package alert // import "github.com/go-lpc/hgcal/internal/alert"

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	mail "gopkg.in/gomail.v2"
)

// ErrNoCredentials is returned when a mail alert can not be sent
// because the mailer is not fully configured.
var ErrNoCredentials = errors.New("alert: missing credentials")

type sender interface {
	DialAndSend(m ...*mail.Message) error
}

// Mailer sends alerts over SMTP.
type Mailer struct {
	Usr  string
	Pwd  string
	Srv  string
	Port int
	Tgts []string

	dial func(srv string, port int, usr, pwd string) sender
}

// FromEnv creates a Mailer from the MAIL_USERNAME, MAIL_PASSWORD,
// MAIL_SERVER, MAIL_PORT and MAIL_TGTS environment variables.
func FromEnv() *Mailer {
	port, _ := strconv.Atoi(os.Getenv("MAIL_PORT"))
	var tgts []string
	for _, tgt := range strings.Split(os.Getenv("MAIL_TGTS"), ",") {
		tgt = strings.TrimSpace(tgt)
		if tgt == "" {
			continue
		}
		tgts = append(tgts, tgt)
	}
	return &Mailer{
		Usr:  os.Getenv("MAIL_USERNAME"),
		Pwd:  os.Getenv("MAIL_PASSWORD"),
		Srv:  os.Getenv("MAIL_SERVER"),
		Port: port,
		Tgts: tgts,
	}
}

func (m *Mailer) valid() bool {
	return m.Usr != "" && m.Pwd != "" &&
		m.Srv != "" && m.Port != 0 &&
		len(m.Tgts) != 0
}

// Send sends a plain text alert to all the targets of the mailer.
func (m *Mailer) Send(subject, body string) error {
	if m == nil || !m.valid() {
		return ErrNoCredentials
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.Usr)
	msg.SetHeader("Bcc", m.Tgts...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dial := m.dial
	if dial == nil {
		dial = dialer
	}

	err := dial(m.Srv, m.Port, m.Usr, m.Pwd).DialAndSend(msg)
	if err != nil {
		return fmt.Errorf("alert: could not send mail: %w", err)
	}
	return nil
}

func dialer(srv string, port int, usr, pwd string) sender {
	dial := mail.NewDialer(srv, port, usr, pwd)
	dial.TLSConfig = &tls.Config{
		InsecureSkipVerify: true,
	}
	return dial
}
