package cwidget

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Input is an entry with a bold label and an inline validation error.
// OnChanged only fires for values that pass Validator.
type Input[T any] struct {
	widget.BaseWidget

	labelWidget *widget.Label
	entryWidget *widget.Entry
	errorWidget *widget.Label

	LabelText   string
	Placeholder string

	DefaultValue T

	OnChanged func(T)

	Validator func(string) (T, error)
}

// NewURLInput accepts absolute URLs whose scheme is one of schemes. An empty
// entry falls back to defaultValue.
func NewURLInput(label, placeholder, defaultValue string, schemes []string, onChanged func(string)) *Input[string] {
	input := &Input[string]{
		LabelText:    label,
		Placeholder:  placeholder,
		OnChanged:    onChanged,
		DefaultValue: defaultValue,
	}

	input.Validator = func(s string) (string, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return input.DefaultValue, nil
		}

		u, err := url.Parse(s)
		if err != nil {
			return "", errors.New("not a valid URL")
		}
		if u.Host == "" {
			return "", errors.New("missing host")
		}
		for _, scheme := range schemes {
			if u.Scheme == scheme {
				return s, nil
			}
		}
		return "", fmt.Errorf("scheme must be one of: %s", strings.Join(schemes, ", "))
	}

	input.build(defaultValue)

	return input
}

// build creates the child widgets. text is set before the entry callbacks are
// attached, so it never reaches OnChanged.
func (item *Input[T]) build(text string) {
	item.labelWidget = widget.NewLabel(item.LabelText)
	item.labelWidget.TextStyle = fyne.TextStyle{Bold: true}

	item.entryWidget = widget.NewEntry()
	item.entryWidget.SetPlaceHolder(item.Placeholder)
	item.entryWidget.SetText(text)

	item.errorWidget = widget.NewLabel("")
	item.errorWidget.Hidden = true
	item.errorWidget.TextStyle = fyne.TextStyle{Italic: true}
	item.errorWidget.Importance = widget.DangerImportance

	item.entryWidget.OnChanged = func(s string) {
		res, err := item.Validator(s)
		item.SetError(err)

		if err == nil && item.OnChanged != nil {
			item.OnChanged(res)
		}
	}

	item.ExtendBaseWidget(item)
}

func (item *Input[T]) CreateRenderer() fyne.WidgetRenderer {
	c := container.NewVBox(
		item.labelWidget,
		item.entryWidget,
		item.errorWidget,
	)

	return widget.NewSimpleRenderer(c)
}

func (item *Input[T]) SetError(err error) {
	item.errorWidget.Hidden = err == nil
	if err != nil {
		item.errorWidget.SetText(err.Error())
	}
	item.errorWidget.Refresh()
}

// ErrorText is the validation message currently shown, empty when valid.
func (item *Input[T]) ErrorText() string {
	if item.errorWidget.Hidden {
		return ""
	}
	return item.errorWidget.Text
}

func (item *Input[T]) SetText(text string) {
	item.entryWidget.SetText(text)
}

func (item *Input[T]) Text() string {
	return item.entryWidget.Text
}
