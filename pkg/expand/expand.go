// Package expand 对配置文本执行 Shell 风格的 ${...} 参数展开。
//
// 仅识别花括号形式，$VAR 原样保留；"$$" 输出字面量 "$"。
//
//	${V}            V 的值，未设置时为空
//	${V:-w} ${V-w}  V 为空/未设置时使用 w
//	${V:+w} ${V+w}  V 非空/已设置时使用 w
//	${V:?m} ${V?m}  V 为空/未设置时返回错误 m
//	${V:=w} ${V=w}  同 :- / -，并把 w 赋给 V (仅在本次展开内可见)
//
// w 可以继续嵌套 ${...}；无法识别的表达式保持原样。
package expand

import (
	"fmt"
	"os"
	"strings"
)

// Expander 持有一份变量快照。
type Expander struct {
	vars map[string]string
}

// FromEnviron 以当前进程环境变量创建 Expander。
func FromEnviron() *Expander {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	return &Expander{vars: vars}
}

// FromMap 以给定变量创建 Expander，vars 会被复制。
func FromMap(vars map[string]string) *Expander {
	cp := make(map[string]string, len(vars))
	for k, v := range vars {
		cp[k] = v
	}

	return &Expander{vars: cp}
}

// String 使用当前环境变量展开 text。
func String(text string) (string, error) {
	return FromEnviron().Expand(text)
}

// Expand 展开 text。
func (e *Expander) Expand(text string) (string, error) {
	if !strings.Contains(text, "$") {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))

	rest := text
	for {
		i := strings.IndexByte(rest, '$')
		if i < 0 || i == len(rest)-1 {
			b.WriteString(rest)

			return b.String(), nil
		}
		b.WriteString(rest[:i])
		rest = rest[i:]

		switch rest[1] {
		case '$':
			b.WriteByte('$')
			rest = rest[2:]

			continue
		case '{':
		default:
			b.WriteByte('$')
			rest = rest[1:]

			continue
		}

		end := closingBrace(rest, 2)
		if end < 0 {
			b.WriteString(rest)

			return b.String(), nil
		}

		val, ok, err := e.eval(rest[2:end])
		if err != nil {
			return "", err
		}
		if ok {
			b.WriteString(val)
		} else {
			b.WriteString(rest[:end+1])
		}
		rest = rest[end+1:]
	}
}

// closingBrace 返回与 s[start-1] 处 "{" 匹配的 "}" 下标，跳过嵌套的 ${...}。
func closingBrace(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch {
		case s[i] == '$' && i+1 < len(s) && s[i+1] == '{':
			depth++
			i++
		case s[i] == '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}

	return -1
}

// expr 一个已解析的 ${...} 表达式。
type expr struct {
	name  string
	colon bool // 空值等同于未设置
	op    byte // 0 表示无操作符
	word  string
}

func parseExpr(s string) (expr, bool) {
	if s == "" || !nameStart(s[0]) {
		return expr{}, false
	}
	i := 1
	for i < len(s) && nameChar(s[i]) {
		i++
	}

	x := expr{name: s[:i]}
	rest := s[i:]
	if rest == "" {
		return x, true
	}
	if rest[0] == ':' {
		x.colon = true
		rest = rest[1:]
		if rest == "" {
			return expr{}, false
		}
	}
	switch rest[0] {
	case '-', '+', '?', '=':
		x.op = rest[0]
		x.word = rest[1:]

		return x, true
	default:
		return expr{}, false
	}
}

func (e *Expander) eval(s string) (string, bool, error) {
	x, ok := parseExpr(s)
	if !ok {
		return "", false, nil
	}

	val, set := e.vars[x.name]
	// colon 形式下空值与未设置等价
	present := set && (!x.colon || val != "")

	switch x.op {
	case 0:
		return val, true, nil
	case '-', '=':
		if present {
			return val, true, nil
		}
		word, err := e.Expand(x.word)
		if err != nil {
			return "", false, err
		}
		if x.op == '=' {
			e.vars[x.name] = word
		}

		return word, true, nil
	case '+':
		if !present {
			return "", true, nil
		}
		word, err := e.Expand(x.word)
		if err != nil {
			return "", false, err
		}

		return word, true, nil
	case '?':
		if present {
			return val, true, nil
		}
		if x.word == "" {
			return "", false, fmt.Errorf("expand: %s: parameter null or not set", x.name)
		}

		return "", false, fmt.Errorf("expand: %s: %s", x.name, x.word)
	}

	return "", false, nil
}

func nameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func nameChar(c byte) bool {
	return nameStart(c) || (c >= '0' && c <= '9')
}
