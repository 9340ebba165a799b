package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The English text doubles as the key.
const (
	msgTransfer        = "%[1]s owes %[2]s %[3]d %[4]s"
	msgNothingToSettle = "Everyone paid an equal share. Nothing to settle."
	msgShare           = "%[1]s: %[2]d %[3]s (%[4]s)"
	msgEqualShare      = "Each person's share: %[1]d %[2]s"
)

var persian = language.Persian

func init() {
	for _, e := range []struct {
		tag       language.Tag
		key, text string
	}{
		{language.English, msgTransfer, msgTransfer},
		{language.English, msgNothingToSettle, msgNothingToSettle},
		{language.English, msgShare, msgShare},
		{language.English, msgEqualShare, msgEqualShare},

		{persian, msgTransfer, "%[1]s باید %[3]d %[4]s به %[2]s بدهد"},
		{persian, msgNothingToSettle, "همه پرداخت‌ها برابرند."},
		{persian, msgShare, "%[1]s: %[2]d %[3]s (%[4]s)"},
		{persian, msgEqualShare, "سهم هر نفر: %[1]d %[2]s"},
	} {
		if err := message.SetString(e.tag, e.key, e.text); err != nil {
			panic(err)
		}
	}
}
