package parsers

import "strings"

// isJavadoc reports whether a block comment is a doc comment. "/**/" is an
// empty ordinary comment, not a doc comment.
func isJavadoc(comment string) bool {
	return strings.HasPrefix(comment, "/**") && comment != "/**/"
}

// javadocDescription reduces a doc comment to its main description: comment
// delimiters and leading '*' gutters are stripped and the text stops at the
// first block tag (@param, @see, ...). Inline tags such as {@link X} are kept.
func javadocDescription(comment string) string {
	body := strings.TrimPrefix(comment, "/**")
	body = strings.TrimSuffix(body, "*/")
	body = strings.ReplaceAll(body, "\r\n", "\n")

	var lines []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimLeft(line, " \t")
		line = strings.TrimLeft(line, "*")
		line = strings.TrimPrefix(line, " ")
		line = strings.TrimRight(line, " \t")

		if strings.HasPrefix(strings.TrimSpace(line), "@") {
			break
		}
		lines = append(lines, line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
