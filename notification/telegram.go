package notification

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/itqwq/tmonitor/model"
	"github.com/itqwq/tmonitor/service"
)

// /signals 600869 或 /signals
var signalsRegexp = regexp.MustCompile(`/signals(?:\s+(?P<symbol>\d{6}))?`)

const recentSignalLimit = 10

// Reporter 机器人查询监控状态和最近信号的入口
type Reporter interface {
	Status() map[string]string
	RecentSignals(symbol string, limit int) ([]model.Signal, error)
	Mute(muted bool)
}

type telegram struct {
	settings    model.Settings
	reporter    Reporter
	defaultMenu *tb.ReplyMarkup
	client      *tb.Bot
}

type Option func(telegram *telegram)

func NewTelegram(reporter Reporter, settings model.Settings, options ...Option) (service.Telegram, error) {
	menu := &tb.ReplyMarkup{ResizeReplyKeyboard: true}
	poller := &tb.LongPoller{Timeout: 10 * time.Second}

	// 只响应白名单内的用户
	userMiddleware := tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		if u.Message == nil || u.Message.Sender == nil {
			log.Error("no message, ", u)
			return false
		}

		for _, user := range settings.Telegram.Users {
			if int(u.Message.Sender.ID) == user {
				return true
			}
		}

		log.Error("invalid user, ", u.Message)
		return false
	})

	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     settings.Telegram.Token,
		Poller:    userMiddleware,
	})
	if err != nil {
		return nil, err
	}

	var (
		statusBtn  = menu.Text("/status")
		signalsBtn = menu.Text("/signals")
		startBtn   = menu.Text("/start")
		stopBtn    = menu.Text("/stop")
	)

	err = client.SetCommands([]tb.Command{
		{Text: "/help", Description: "显示帮助指令"},
		{Text: "/status", Description: "各股票监控状态"},
		{Text: "/signals", Description: "最近信号，可指定股票代码"},
		{Text: "/start", Description: "恢复信号推送"},
		{Text: "/stop", Description: "暂停信号推送"},
	})
	if err != nil {
		return nil, err
	}

	menu.Reply(
		menu.Row(statusBtn, signalsBtn),
		menu.Row(startBtn, stopBtn),
	)

	bot := &telegram{
		reporter:    reporter,
		client:      client,
		settings:    settings,
		defaultMenu: menu,
	}

	for _, option := range options {
		option(bot)
	}

	client.Handle("/help", bot.HelpHandle)
	client.Handle("/status", bot.StatusHandle)
	client.Handle("/signals", bot.SignalsHandle)
	client.Handle("/start", bot.StartHandle)
	client.Handle("/stop", bot.StopHandle)

	return bot, nil
}

func (t telegram) Start() {
	go t.client.Start()
	for _, id := range t.settings.Telegram.Users {
		_, err := t.client.Send(&tb.User{ID: int64(id)}, "Monitor initialized.", t.defaultMenu)
		if err != nil {
			log.Error(err)
		}
	}
}

func (t telegram) Notify(text string) {
	for _, user := range t.settings.Telegram.Users {
		_, err := t.client.Send(&tb.User{ID: int64(user)}, text)
		if err != nil {
			log.Error(err)
		}
	}
}

func (t telegram) reply(m *tb.Message, text string) {
	if _, err := t.client.Send(m.Sender, text); err != nil {
		log.Error(err)
	}
}

func (t telegram) HelpHandle(m *tb.Message) {
	commands, err := t.client.GetCommands()
	if err != nil {
		log.Error(err)
		t.OnError(err)
		return
	}

	lines := make([]string, 0, len(commands))
	for _, command := range commands {
		lines = append(lines, fmt.Sprintf("/%s - %s", command.Text, command.Description))
	}

	t.reply(m, strings.Join(lines, "\n"))
}

func (t telegram) StatusHandle(m *tb.Message) {
	status := t.reporter.Status()
	if len(status) == 0 {
		t.reply(m, "No symbols monitored.")
		return
	}

	symbols := make([]string, 0, len(status))
	for symbol := range status {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	message := "*STATUS*\n"
	for _, symbol := range symbols {
		message += fmt.Sprintf("%s: `%s`\n", symbol, status[symbol])
	}
	t.reply(m, message)
}

func (t telegram) SignalsHandle(m *tb.Message) {
	match := signalsRegexp.FindStringSubmatch(m.Text)
	symbol := ""
	if len(match) > 0 {
		symbol = match[signalsRegexp.SubexpIndex("symbol")]
	}

	signals, err := t.reporter.RecentSignals(symbol, recentSignalLimit)
	if err != nil {
		log.Error(err)
		t.OnError(err)
		return
	}

	if len(signals) == 0 {
		t.reply(m, "No signals registered.")
		return
	}

	lines := make([]string, 0, len(signals))
	for _, signal := range signals {
		lines = append(lines, fmt.Sprintf("`%s`", signal))
	}
	t.reply(m, strings.Join(lines, "\n"))
}

func (t telegram) StartHandle(m *tb.Message) {
	t.reporter.Mute(false)
	t.reply(m, "Notifications resumed.")
}

func (t telegram) StopHandle(m *tb.Message) {
	t.reporter.Mute(true)
	t.reply(m, "Notifications paused.")
}

func (t telegram) OnSignal(signal model.Signal) {
	t.Notify(FormatSignal(signal))
}

func (t telegram) OnError(err error) {
	t.Notify(fmt.Sprintf("🛑 ERROR\n-----\n%s", err))
}
