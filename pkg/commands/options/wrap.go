package options

import "github.com/muesli/reflow/wordwrap"

func Wrap80(text string) string {
	return Wrap(text, 80)
}

func Wrap(text string, width int) string {
	return wordwrap.String(text, width)
}
