package notification

import (
	"fmt"
	"net/smtp"

	log "github.com/sirupsen/logrus"

	"github.com/itqwq/tmonitor/model"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mail 通过 SMTP 发送信号邮件
type Mail struct {
	auth              smtp.Auth
	smtpServerPort    int
	smtpServerAddress string
	to                string
	from              string
	send              sendMailFunc
}

func (t Mail) Notify(text string) {
	serverAddress := fmt.Sprintf("%s:%d", t.smtpServerAddress, t.smtpServerPort)
	message := fmt.Sprintf("To: \"User\" <%s>\r\nFrom: \"TMonitor\" <%s>\r\n%s", t.to, t.from, text)

	err := t.send(serverAddress, t.auth, t.from, []string{t.to}, []byte(message))
	if err != nil {
		log.WithError(err).Errorf("notification/mail: couldnt send mail")
	}
}

func (t Mail) OnSignal(signal model.Signal) {
	title := fmt.Sprintf("📈 %s 信号 - %s", signal.Side, label(signal.Name, signal.Symbol))
	if signal.Side == model.SideTypeSell {
		title = fmt.Sprintf("📉 %s 信号 - %s", signal.Side, label(signal.Name, signal.Symbol))
	}
	t.Notify(fmt.Sprintf("Subject: %s\r\n\r\n%s", title, FormatSignal(signal)))
}

func (t Mail) OnError(err error) {
	t.Notify(fmt.Sprintf("Subject: 🛑 ERROR\r\n\r\nError %s", err))
}

func NewMail(settings model.MailSettings) Mail {
	return Mail{
		from:              settings.From,
		to:                settings.To,
		smtpServerPort:    settings.Port,
		smtpServerAddress: settings.Server,
		auth:              smtp.PlainAuth("", settings.From, settings.Password, settings.Server),
		send:              smtp.SendMail,
	}
}
