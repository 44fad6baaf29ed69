package tmonitor

import (
	"github.com/itqwq/tmonitor/model"
)

type (
	Settings         = model.Settings
	TelegramSettings = model.TelegramSettings
	FeishuSettings   = model.FeishuSettings
	MailSettings     = model.MailSettings
	Config           = model.Config
	Bar              = model.Bar
	Signal           = model.Signal
	SideType         = model.SideType
)

var (
	SideTypeBuy   = model.SideTypeBuy
	SideTypeSell  = model.SideTypeSell
	DefaultConfig = model.DefaultConfig
)
