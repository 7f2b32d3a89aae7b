// Package validate rejects normalized rows before any side effects occur.
package validate

import (
	"strings"

	playground "github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"

	"github.com/Subhe93/murbaat-import/internal/model"
)

var v = playground.New()

// Row checks a normalized row against the import rules. It returns nil when
// the row is acceptable, or the first failing rule as an error. The error
// messages are operator-facing and surface verbatim in the import report.
func Row(in model.CompanyInput, s model.ImportSettings) error {
	name := strings.TrimSpace(in.Name)
	if len([]rune(name)) < 2 {
		return eris.New("اسم الشركة مطلوب ويجب أن يكون حرفين على الأقل")
	}
	if len([]rune(name)) > 200 {
		return eris.New("اسم الشركة طويل جداً (الحد الأقصى 200 حرف)")
	}

	if s.ValidateEmails && in.Email != "" {
		if err := v.Var(in.Email, "email"); err != nil {
			return eris.New("البريد الإلكتروني غير صالح: " + in.Email)
		}
	}

	if s.ValidatePhones && in.Phone != "" {
		if err := phone(in.Phone); err != nil {
			return err
		}
	}

	return nil
}

// phone validates an already-normalized phone number. Formatting characters
// are stripped first; anything left outside [+0-9] is rejected.
func phone(raw string) error {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "").Replace(raw)

	for i, r := range cleaned {
		if r >= '0' && r <= '9' {
			continue
		}
		if r == '+' && i == 0 {
			continue
		}
		return eris.New("رقم الهاتف يحتوي على رموز غير صالحة: " + raw)
	}

	if strings.HasPrefix(cleaned, "+") {
		// Syrian numbers are fixed-length: +963 plus nine digits.
		if strings.HasPrefix(cleaned, "+963") && len(cleaned) != 13 {
			return eris.New("رقم الهاتف السوري غير صالح: " + raw)
		}
		if len(cleaned) < 8 || len(cleaned) > 17 {
			return eris.New("رقم الهاتف غير صالح: " + raw)
		}
		return nil
	}

	if len(cleaned) < 7 || len(cleaned) > 15 {
		return eris.New("رقم الهاتف غير صالح: " + raw)
	}
	return nil
}
