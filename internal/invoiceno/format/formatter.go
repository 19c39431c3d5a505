package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

const (
	DefaultTemplate = "{PREFIX}-{TENANT}-{SEQ6}"
	tenantFragment  = 4
)

type Fields struct {
	Prefix   string
	TenantID snowflake.ID
	IssuedOn time.Time
	Seq      int64
}

// InvoiceNumber renders template for f. It has no side effects.
//
// Tokens: {PREFIX}, {TENANT}, {YYYY}, {YY}, {MM}, {DD}, {SEQ} and {SEQn} for a
// sequence zero-padded to n digits.
func InvoiceNumber(template string, f Fields) (string, error) {
	if template == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}
	if f.Seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", f.Seq)
	}

	out := template
	out = strings.ReplaceAll(out, "{PREFIX}", f.Prefix)
	out = strings.ReplaceAll(out, "{TENANT}", TenantFragment(f.TenantID))
	out = strings.ReplaceAll(out, "{YYYY}", f.IssuedOn.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", f.IssuedOn.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", f.IssuedOn.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", f.IssuedOn.Format("02"))
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(f.Seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, f.Seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unresolved token in invoice format: %s", out)
	}
	return out, nil
}

// TenantFragment is the upper-case base36 tail of the tenant id, left padded to four characters.
func TenantFragment(tenantID snowflake.ID) string {
	encoded := strings.ToUpper(strconv.FormatInt(int64(tenantID), 36))
	if len(encoded) >= tenantFragment {
		return encoded[len(encoded)-tenantFragment:]
	}
	return strings.Repeat("0", tenantFragment-len(encoded)) + encoded
}
