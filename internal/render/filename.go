// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/scribe/pkg/types"
)

// Filename renders an output filename template. The context offers the
// source file's base name (extension stripped at the last dot), the
// extension including its dot, the original filename, an RFC 3339
// processing timestamp, a base-36 seconds-since-midnight token for
// same-run collision reduction, and every passed variable. Filenames do
// not support array expansion; array-valued variables are skipped and
// their tokens pass through verbatim.
func Filename(template, originalFilename string, vars map[string]types.Value, now time.Time) string {
	base, ext := splitExtension(originalFilename)

	builtin := map[string]string{
		"baseName":         base,
		"extension":        ext,
		"originalFilename": originalFilename,
		"timestamp":        now.Format(time.RFC3339),
		"dayToken":         daySeconds36(now),
	}

	var b strings.Builder
	for _, n := range parse(template) {
		if n.token == "" {
			b.WriteString(n.text)
			continue
		}
		if v, ok := builtin[n.token]; ok {
			b.WriteString(v)
			continue
		}
		key := strings.TrimPrefix(n.token, varPrefix)
		if v, ok := vars[key]; ok && !v.IsArray() {
			b.WriteString(v.Scalar())
			continue
		}
		b.WriteString(n.text)
	}
	return b.String()
}

// splitExtension separates a filename at its last dot. A name with no dot
// has an empty extension.
func splitExtension(name string) (base, ext string) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i:]
}

// daySeconds36 encodes seconds elapsed since local midnight in base 36.
// Two files processed in the same second still collide; the token only
// thins out same-run collisions.
func daySeconds36(now time.Time) string {
	secs := now.Hour()*3600 + now.Minute()*60 + now.Second()
	return strconv.FormatInt(int64(secs), 36)
}

// SanitizeTimestamp converts an RFC 3339 timestamp into a form safe for
// filenames by replacing colons and periods.
func SanitizeTimestamp(ts string) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(ts)
}
