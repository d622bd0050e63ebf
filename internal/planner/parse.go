package planner

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// ── 自然语言课程名解析 ──────────────────────────────────────
//
// 用户输入形如 "자료구조, 운영체제랑 데이터베이스 넣어줘"：
//   - 按分隔符与连接词切分
//   - 去掉请求类短语（"넣어줘" "듣고 싶어" 等）
//   - 大小写不敏感去重，保持首次出现顺序
// ─────────────────────────────────────────────────────────────

var (
	separatorPattern = regexp.MustCompile(`[,，、/+;；\n]|\s+(?:그리고|and|&)\s+`)
	particlePattern  = regexp.MustCompile(`(?:이랑|랑|하고|과|와)(?:\s+|$)`)
	fillerPattern    = regexp.MustCompile(`(?i)(시간표(?:를|에)?|넣어\s*줘|추가해\s*줘|짜\s*줘|듣고\s*싶어(?:요)?|들을래(?:요)?|수강하고\s*싶어(?:요)?|please|i\s+want\s+to\s+take)`)
)

// minNameRunes 课程名最少字符数
const minNameRunes = 2

// ParseCourseNames 从自由文本中提取课程名列表
func ParseCourseNames(text string) []string {
	text = fillerPattern.ReplaceAllString(text, " ")
	parts := separatorPattern.Split(text, -1)

	seen := make(map[string]bool)
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		for _, piece := range particlePattern.Split(part+" ", -1) {
			name := strings.Join(strings.Fields(piece), " ")
			if utf8.RuneCountInString(name) < minNameRunes {
				continue
			}
			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			seen[key] = true
			names = append(names, name)
		}
	}
	return names
}

// CourseMatch 一个查询词在课程目录中的匹配结果
type CourseMatch struct {
	Query    string   `json:"query"`
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Sections []Course `json:"sections"`
	Exact    bool     `json:"exact"`
	Distance int      `json:"distance"`
}

// MatchCourses 将课程名与目录匹配，返回匹配结果与未匹配的查询词。
//
// 匹配顺序：课程代码 → 名称完全一致 → 名称包含 → 编辑距离（阈值为查询长度的 1/3）。
// 同一代码的全部分班都作为候选返回。
func MatchCourses(names []string, catalog []Course) ([]CourseMatch, []string) {
	type entry struct {
		code     string
		name     string
		norm     string
		sections []Course
	}
	var (
		entries []*entry
		byCode  = make(map[string]*entry)
	)
	for _, c := range catalog {
		key := strings.ToLower(c.Code)
		e, ok := byCode[key]
		if !ok {
			e = &entry{code: c.Code, name: c.Name, norm: normalizeName(c.Name)}
			byCode[key] = e
			entries = append(entries, e)
		}
		e.sections = append(e.sections, c)
	}

	matches := make([]CourseMatch, 0, len(names))
	unmatched := make([]string, 0)
	taken := make(map[string]bool)

	for _, q := range names {
		nq := normalizeName(q)
		if nq == "" {
			continue
		}
		var (
			best     *entry
			exact    bool
			distance int
		)

		if e, ok := byCode[strings.ToLower(strings.TrimSpace(q))]; ok {
			best, exact = e, true
		}
		if best == nil {
			for _, e := range entries {
				if e.norm == nq {
					best, exact = e, true
					break
				}
			}
		}
		if best == nil {
			for _, e := range entries {
				if e.norm == "" {
					continue
				}
				if strings.Contains(e.norm, nq) || strings.Contains(nq, e.norm) {
					best = e
					break
				}
			}
		}
		if best == nil {
			threshold := utf8.RuneCountInString(nq) / 3
			if threshold < 1 {
				threshold = 1
			}
			distance = threshold + 1
			for _, e := range entries {
				if d := levenshtein.ComputeDistance(nq, e.norm); d < distance {
					best, distance = e, d
				}
			}
			if distance > threshold {
				best = nil
			}
		}

		if best == nil {
			unmatched = append(unmatched, q)
			continue
		}
		if taken[best.code] {
			continue
		}
		taken[best.code] = true

		sections := make([]Course, len(best.sections))
		copy(sections, best.sections)
		matches = append(matches, CourseMatch{
			Query:    q,
			Code:     best.code,
			Name:     best.name,
			Sections: sections,
			Exact:    exact,
			Distance: distance,
		})
	}
	return matches, unmatched
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
