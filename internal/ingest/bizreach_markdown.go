// Package ingest converts BizReach résumé exports (PDF or markdown) into
// the newline-delimited candidate records consumed by the screening
// pipeline.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/hr-screening/internal/types"
)

var (
	candidateIDRe      = regexp.MustCompile(`^BU\d{7}$`)
	genderLineRe       = regexp.MustCompile(`(男性|女性)\s*/\s*(\d+)歳?\s*/\s*([^/]+)`)
	strikeRe           = regexp.MustCompile(`~~([^~]+)~~`)
	dateRangeContextRe = regexp.MustCompile(`(?P<prefix>.*?)(?P<start_year>\d{4})年(?P<start_month>\d{1,2})月\s*[〜~\-]\s*(?:(?P<end_year>\d{4})年(?P<end_month>\d{1,2})月|現在)(?P<suffix>.*)`)
	pureDateLineRe     = regexp.MustCompile(`^\s*\d{4}年\d{1,2}月\s*[〜~\-]\s*(?:\d{4}年\d{1,2}月|現在)\s*$`)
	parenStripRe       = regexp.MustCompile(`[()（）]`)
	hopeLocationRe     = regexp.MustCompile(`希望勤務地[：:]\s*(.+)`)
	salaryRangeRe      = regexp.MustCompile(`希望年収[：:]\s*(\d+(?:[.,]\d+)?)(?:\s*[万円]?)\s*[〜~\-ー]\s*(\d+(?:[.,]\d+)?)(?:\s*万円?)`)
	salarySingleRe     = regexp.MustCompile(`希望年収[：:]\s*(\d+(?:[.,]\d+)?)(?:\s*万円?)`)
	salaryWordRe       = regexp.MustCompile(`年収\s*(\d+(?:[.,]\d+)?)\s*万円`)
	relocationPosRe    = regexp.MustCompile(`(転居可|転居可能|転勤可|転勤可能)`)
	relocationNegRe    = regexp.MustCompile(`(転居不可|転居困難|転勤不可)`)
	remotePosRe        = regexp.MustCompile(`(フルリモート|リモート可|在宅勤務可|在宅ワーク可)`)
	remoteNegRe        = regexp.MustCompile(`(リモート不可|在宅不可)`)
	locationSplitRe    = regexp.MustCompile(`[、,/・\s]+`)
)

var companyKeywords = []string{
	"株式会社", "有限会社", "合同会社",
	"Inc", "INC", "inc", "LLC", "Co.", "Corp", "Corporation", "Company",
	"社団法人", "財団法人", "学校法人",
}

var overviewKeys = []string{
	"所属企業一覧", "直近の年収", "経験職種", "経験業種", "マネジメント経験", "海外勤務経験",
}

var academicsKeys = []string{"学歴", "語学力", "海外留学経験"}

var majorSections = []string{
	"職務要約",
	"コアスキル（活かせる経験・知識・能力）",
	"職務経歴",
	"学歴",
	"表彰",
	"語学・資格",
	"特記事項",
	"フリーテキスト",
	"職務経歴概要",
	"学歴/語学",
}

// MarkdownToRecords parses a BizReach markdown export into candidate
// profiles, one per BU-prefixed candidate ID heading.
func MarkdownToRecords(markdown string) []*types.CandidateProfile {
	var profiles []*types.CandidateProfile
	for _, chunk := range splitCandidates(markdown) {
		profiles = append(profiles, linesToCandidate(chunk.id, chunk.lines))
	}
	return profiles
}

// PDFToJSONL extracts text from a BizReach PDF export and writes the
// parsed candidate records as JSONL. When markdownPath is non-empty the
// intermediate text is also persisted for inspection.
func PDFToJSONL(pdfPath, jsonlPath, markdownPath string) error {
	text, err := ExtractText(pdfPath, nil)
	if err != nil {
		return err
	}
	if markdownPath != "" {
		if err := os.WriteFile(markdownPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing intermediate text: %w", err)
		}
	}
	return MarkdownFileToJSONL(text, jsonlPath)
}

// MarkdownFileToJSONL parses markdown content and writes the JSONL records.
func MarkdownFileToJSONL(markdown, jsonlPath string) error {
	profiles := MarkdownToRecords(markdown)
	if len(profiles) == 0 {
		return fmt.Errorf("no candidates detected in markdown")
	}
	var sb strings.Builder
	for _, profile := range profiles {
		line, err := recordLine(profile)
		if err != nil {
			return err
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if err := os.WriteFile(jsonlPath, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing JSONL: %w", err)
	}
	return nil
}

// recordLine serializes one profile as `{"provider": ..., "payload": ...}`
// with empty fields pruned, preserving non-ASCII text literally.
func recordLine(profile *types.CandidateProfile) (string, error) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("serializing candidate %s: %w", profile.CandidateID, err)
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", err
	}
	record := map[string]any{
		"provider": profile.Provider,
		"payload":  pruneEmpty(payload),
	}
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

type candidateChunk struct {
	id    string
	lines []string
}

// splitCandidates groups markdown lines under the candidate ID headings.
// Consecutive duplicate lines within one candidate are collapsed.
func splitCandidates(markdown string) []candidateChunk {
	var chunks []candidateChunk
	var currentID string
	var buffer []string

	flush := func() {
		if currentID != "" && len(buffer) > 0 {
			chunks = append(chunks, candidateChunk{id: currentID, lines: dedupeConsecutive(buffer)})
		}
	}

	for _, line := range strings.Split(markdown, "\n") {
		clean := stripStrikethrough(strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#")))
		if candidateIDRe.MatchString(clean) {
			if currentID == "" {
				currentID = clean
				continue
			}
			if clean != currentID {
				flush()
				buffer = nil
				currentID = clean
			}
			continue
		}
		if currentID != "" {
			buffer = append(buffer, line)
		}
	}
	flush()
	return chunks
}

func dedupeConsecutive(lines []string) []string {
	normalized := make([]string, 0, len(lines))
	var previous string
	first := true
	for _, line := range lines {
		if !first && line == previous {
			continue
		}
		normalized = append(normalized, line)
		previous = line
		first = false
	}
	return normalized
}

func linesToCandidate(candidateID string, lines []string) *types.CandidateProfile {
	sections := parseSections(lines)

	var gender string
	var age *int
	for _, line := range lines {
		if m := genderLineRe.FindStringSubmatch(line); m != nil {
			gender = m[1]
			if parsed, err := strconv.Atoi(m[2]); err == nil {
				age = &parsed
			}
			break
		}
	}

	overviewData := extractKeyedItems(sections["職務経歴概要"], overviewKeys)
	academicOverview := extractKeyedItems(sections["学歴/語学"], academicsKeys)

	experiences := extractExperiences(sections["職務経歴"])
	if len(experiences) == 0 {
		experiences = extractExperiences(sections["職務要約"])
	}
	if len(experiences) == 0 {
		experiences = extractExperiences(lines)
	}

	skills := extractSkillsFromSection(sections["コアスキル（活かせる経験・知識・能力）"])
	education := extractEducation(sections["学歴"])
	awards := extractBullets(sections["表彰"])
	languages, certifications := extractLanguagesAndCertifications(sections["語学・資格"])

	var notesParts []string
	for _, heading := range []string{"特記事項", "特記事項 フリーテキスト", "フリーテキスト"} {
		if text := sectionText(sections[heading]); text != "" {
			notesParts = append(notesParts, text)
		}
	}

	providerFields := map[string]any{}
	for _, heading := range majorSections {
		if section, ok := sections[heading]; ok {
			providerFields[heading] = sectionText(section)
		}
	}
	if len(overviewData) > 0 {
		providerFields["職務経歴概要"] = overviewData
	}
	if len(academicOverview) > 0 {
		providerFields["学歴/語学"] = academicOverview
	}

	desiredLocations := extractDesiredLocations(sections)
	canRelocate, remoteOK := extractSpecialConstraints(sections)
	salaryMin, salaryMax := extractDesiredSalary(sections)

	var constraints *types.CandidateConstraints
	if len(desiredLocations) > 0 || canRelocate != nil || remoteOK != nil {
		constraints = &types.CandidateConstraints{
			Location:    desiredLocations,
			CanRelocate: canRelocate,
			RemoteOK:    remoteOK,
		}
	}

	return &types.CandidateProfile{
		Provider:            "bizreach",
		CandidateID:         candidateID,
		Gender:              gender,
		Age:                 age,
		Experiences:         experiences,
		Education:           education,
		Skills:              skills,
		Languages:           languages,
		Certifications:      certifications,
		Awards:              awards,
		Notes:               strings.Join(notesParts, "\n\n"),
		Constraints:         constraints,
		DesiredSalaryMinJPY: salaryMin,
		DesiredSalaryMaxJPY: salaryMax,
		ProviderRaw: types.ProviderRaw{
			Text:   strings.TrimSpace(strings.Join(lines, "\n")),
			Fields: providerFields,
		},
	}
}

// parseSections groups lines under their "##" headings.
func parseSections(lines []string) map[string][]string {
	sections := map[string][]string{}
	var current string
	var buffer []string
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "##") {
			if current != "" && len(buffer) > 0 {
				sections[current] = buffer
			}
			current = stripStrikethrough(strings.TrimSpace(strings.TrimLeft(stripped, "#")))
			buffer = nil
			continue
		}
		if strings.HasPrefix(stripped, "#") {
			continue
		}
		if current != "" {
			buffer = append(buffer, line)
		}
	}
	if current != "" && len(buffer) > 0 {
		sections[current] = buffer
	}
	return sections
}

func sectionText(sectionLines []string) string {
	cleaned := make([]string, 0, len(sectionLines))
	for _, line := range sectionLines {
		cleaned = append(cleaned, stripStrikethrough(strings.TrimSpace(line)))
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// extractKeyedItems pulls 【key】-delimited blocks from a section.
func extractKeyedItems(sectionLines []string, keys []string) map[string]string {
	if len(sectionLines) == 0 {
		return nil
	}
	keySet := map[string]bool{}
	for _, key := range keys {
		keySet[key] = true
	}
	result := map[string]string{}
	var currentKey string
	var buffer []string
	flush := func() {
		if currentKey != "" && len(buffer) > 0 {
			result[currentKey] = strings.TrimSpace(strings.Join(buffer, "\n"))
		}
	}
	for _, line := range sectionLines {
		stripped := stripStrikethrough(strings.TrimSpace(line))
		if strings.HasPrefix(stripped, "【") && strings.Contains(stripped, "】") {
			key := strings.TrimSpace(strings.Trim(stripped, "【】"))
			if keySet[key] {
				flush()
				currentKey = key
				buffer = nil
				continue
			}
		}
		if currentKey != "" {
			buffer = append(buffer, stripped)
		}
	}
	flush()
	if len(result) == 0 {
		return nil
	}
	return result
}

func extractBullets(sectionLines []string) []string {
	var items []string
	for _, line := range sectionLines {
		stripped := stripStrikethrough(strings.TrimSpace(line))
		if strings.HasPrefix(stripped, "・") || strings.HasPrefix(stripped, "-") {
			entry := strings.TrimSpace(strings.TrimLeft(stripped, "・- "))
			if entry != "" {
				items = append(items, entry)
			}
		}
	}
	return items
}

// extractSkillsFromSection reads bullet entries up to the first 【 block.
func extractSkillsFromSection(sectionLines []string) []string {
	var skills []string
	for _, line := range sectionLines {
		stripped := stripStrikethrough(strings.TrimSpace(line))
		if strings.HasPrefix(stripped, "【") {
			break
		}
		if strings.HasPrefix(stripped, "・") || strings.HasPrefix(stripped, "-") {
			entry := strings.TrimSpace(strings.TrimLeft(stripped, "・- "))
			if entry != "" {
				skills = append(skills, entry)
			}
		}
	}
	return skills
}

func extractEducation(sectionLines []string) []types.EducationEntry {
	var entries []types.EducationEntry
	for _, item := range extractBullets(sectionLines) {
		entries = append(entries, types.EducationEntry{School: item})
	}
	return entries
}

// extractLanguagesAndCertifications classifies bullets: tokens ending in
// 語 are languages (remaining tokens become the level), everything else is
// a certification.
func extractLanguagesAndCertifications(sectionLines []string) ([]types.LanguageProficiency, []string) {
	var languages []types.LanguageProficiency
	var certifications []string
	for _, item := range extractBullets(sectionLines) {
		tokens := strings.Fields(item)
		if len(tokens) == 0 {
			continue
		}
		if strings.HasSuffix(tokens[0], "語") {
			languages = append(languages, types.LanguageProficiency{
				Language: tokens[0],
				Level:    strings.Join(tokens[1:], " "),
			})
		} else {
			certifications = append(certifications, item)
		}
	}
	return languages, certifications
}

func extractExperiences(sectionLines []string) []types.ExperienceEntry {
	var experiences []types.ExperienceEntry
	if len(sectionLines) == 0 {
		return experiences
	}
	seen := map[string]bool{}
	index := 0
	for index < len(sectionLines) {
		stripped := stripStrikethrough(strings.TrimSpace(sectionLines[index]))
		if stripped == "" {
			index++
			continue
		}
		if isCompanyHeader(stripped) {
			entry, nextIndex := parseCompanyBlock(sectionLines, index)
			if entry != nil {
				key := entry.Company + "\x00" + entry.Start + "\x00" + entry.End + "\x00" + entry.Title
				if !seen[key] {
					seen[key] = true
					experiences = append(experiences, *entry)
				}
			}
			if nextIndex <= index {
				nextIndex = index + 1
			}
			index = nextIndex
			continue
		}
		index++
	}
	return experiences
}

func isCompanyHeader(line string) bool {
	cleaned := strings.TrimSpace(line)
	if cleaned == "" || strings.HasPrefix(cleaned, "##") {
		return false
	}
	if strings.HasPrefix(cleaned, "【") && strings.Contains(cleaned, "】") {
		inner := strings.TrimSpace(strings.Trim(cleaned, "【】"))
		return containsAny(inner, companyKeywords)
	}
	if strings.HasPrefix(cleaned, "・") || strings.HasPrefix(cleaned, "-") {
		return false
	}
	return containsAny(cleaned, companyKeywords)
}

// parseCompanyBlock reads one company entry: the header line carries the
// company name and possibly dates, the next line a department/title, then
// an optional role line with dates, then summary lines until a section
// terminator or the next company header.
func parseCompanyBlock(lines []string, startIndex int) (*types.ExperienceEntry, int) {
	companyLine := stripStrikethrough(strings.TrimSpace(lines[startIndex]))
	companyName, start, end := splitCompanyLine(companyLine)
	company := companyName
	if company == "" {
		company = strings.TrimSpace(strings.Trim(companyLine, "【】"))
	}

	index := startIndex + 1
	var title string

	index = skipBlankLines(lines, index)
	if index < len(lines) {
		dept := stripStrikethrough(strings.TrimSpace(lines[index]))
		if dept != "" && !dateRangeContextRe.MatchString(dept) && !isCompanyHeader(dept) {
			title = cleanContextText(dept)
			index++
		}
	}

	index = skipBlankLines(lines, index)
	if index < len(lines) {
		roleLine := stripStrikethrough(strings.TrimSpace(lines[index]))
		roleStart, roleEnd := extractDatesFromText(roleLine)
		if roleStart != "" || roleEnd != "" {
			if start == "" {
				start = roleStart
			}
			if end == "" {
				end = roleEnd
			}
			index++
		}
	}

	var summaryLines []string
	for index < len(lines) {
		raw := lines[index]
		stripped := stripStrikethrough(strings.TrimSpace(raw))
		if stripped == "" {
			summaryLines = append(summaryLines, "")
			index++
			continue
		}
		if isSectionTerminator(stripped) || isCompanyHeader(stripped) {
			break
		}
		if pureDateLineRe.MatchString(stripped) {
			index++
			continue
		}
		summaryLines = append(summaryLines, stripStrikethrough(strings.TrimSpace(raw)))
		index++
	}

	entry := &types.ExperienceEntry{
		Company: company,
		Title:   title,
		Start:   start,
		End:     end,
		Summary: strings.TrimSpace(strings.Join(summaryLines, "\n")),
	}
	return entry, index
}

func isSectionTerminator(text string) bool {
	if text == "" {
		return false
	}
	if strings.HasPrefix(text, "##") {
		return true
	}
	clean := strings.TrimSpace(strings.TrimLeft(text, "#"))
	return candidateIDRe.MatchString(clean)
}

func skipBlankLines(lines []string, index int) int {
	for index < len(lines) {
		if stripStrikethrough(strings.TrimSpace(lines[index])) != "" {
			break
		}
		index++
	}
	return index
}

// splitCompanyLine separates an inline date range from the company name.
func splitCompanyLine(text string) (company, start, end string) {
	m := dateRangeContextRe.FindStringSubmatch(text)
	if m == nil {
		return strings.TrimSpace(strings.Trim(text, "【】")), "", ""
	}
	groups := submatchMap(dateRangeContextRe, m)
	start = formatYearMonth(groups["start_year"], groups["start_month"])
	if groups["end_year"] != "" {
		end = formatYearMonth(groups["end_year"], groups["end_month"])
	}
	remaining := strings.TrimSpace(groups["prefix"] + groups["suffix"])
	return strings.TrimSpace(strings.Trim(remaining, "【】")), start, end
}

func extractDatesFromText(text string) (start, end string) {
	m := dateRangeContextRe.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	groups := submatchMap(dateRangeContextRe, m)
	start = formatYearMonth(groups["start_year"], groups["start_month"])
	if groups["end_year"] != "" {
		end = formatYearMonth(groups["end_year"], groups["end_month"])
	}
	return start, end
}

func cleanContextText(text string) string {
	cleaned := parenStripRe.ReplaceAllString(text, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Trim(cleaned, "：:・-／/　")
	return strings.TrimSpace(cleaned)
}

func extractSpecialConstraints(sections map[string][]string) (canRelocate, remoteOK *bool) {
	for _, lines := range sections {
		for _, raw := range lines {
			stripped := stripStrikethrough(strings.TrimSpace(raw))
			if stripped == "" {
				continue
			}
			if relocationNegRe.MatchString(stripped) {
				canRelocate = boolPtr(false)
			} else if relocationPosRe.MatchString(stripped) && canRelocate == nil {
				canRelocate = boolPtr(true)
			}
			if remoteNegRe.MatchString(stripped) {
				remoteOK = boolPtr(false)
			} else if remotePosRe.MatchString(stripped) && remoteOK == nil {
				remoteOK = boolPtr(true)
			}
		}
	}
	return canRelocate, remoteOK
}

// extractDesiredSalary reads 万円-denominated salary statements. A range
// takes precedence; single statements expand to a zero-width range.
func extractDesiredSalary(sections map[string][]string) (salaryMin, salaryMax *int64) {
	for _, lines := range sections {
		for _, raw := range lines {
			stripped := stripStrikethrough(strings.TrimSpace(raw))
			if stripped == "" {
				continue
			}
			if salaryMin == nil || salaryMax == nil {
				if m := salaryRangeRe.FindStringSubmatch(stripped); m != nil {
					salaryMin = salaryToYen(m[1])
					salaryMax = salaryToYen(m[2])
					continue
				}
			}
			if salaryMin == nil && salaryMax == nil {
				if m := salarySingleRe.FindStringSubmatch(stripped); m != nil {
					value := salaryToYen(m[1])
					salaryMin, salaryMax = value, value
					continue
				}
				if m := salaryWordRe.FindStringSubmatch(stripped); m != nil {
					value := salaryToYen(m[1])
					salaryMin, salaryMax = value, value
				}
			}
		}
	}
	return salaryMin, salaryMax
}

// salaryToYen converts a 万円 amount string ("650", "1,200") to yen.
func salaryToYen(value string) *int64 {
	normalized := strings.ReplaceAll(value, ",", "")
	amount, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return nil
	}
	yen := int64(amount * 10000)
	return &yen
}

func extractDesiredLocations(sections map[string][]string) []string {
	var locations []string
	for _, lines := range sections {
		for _, raw := range lines {
			stripped := stripStrikethrough(strings.TrimSpace(raw))
			if stripped == "" {
				continue
			}
			m := hopeLocationRe.FindStringSubmatch(stripped)
			if m == nil {
				continue
			}
			for _, token := range locationSplitRe.Split(m[1], -1) {
				if cleaned := strings.TrimSpace(token); cleaned != "" {
					locations = append(locations, cleaned)
				}
			}
		}
	}
	return uniquePreserve(locations)
}

func uniquePreserve(items []string) []string {
	seen := map[string]bool{}
	var ordered []string
	for _, item := range items {
		normalized := strings.TrimSpace(item)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		ordered = append(ordered, normalized)
	}
	return ordered
}

func stripStrikethrough(text string) string {
	return strikeRe.ReplaceAllString(text, "$1")
}

// submatchMap maps a regexp's named capture groups to their submatches.
func submatchMap(re *regexp.Regexp, match []string) map[string]string {
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name == "" || i >= len(match) {
			continue
		}
		groups[name] = match[i]
	}
	return groups
}

func formatYearMonth(year, month string) string {
	y, errY := strconv.Atoi(year)
	m, errM := strconv.Atoi(month)
	if errY != nil || errM != nil {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", y, m)
}

// pruneEmpty recursively removes nil, empty-string, empty-list, and
// empty-map values from a decoded JSON structure.
func pruneEmpty(value any) any {
	switch v := value.(type) {
	case map[string]any:
		result := map[string]any{}
		for key, item := range v {
			cleaned := pruneEmpty(item)
			if isEmptyValue(cleaned) {
				continue
			}
			result[key] = cleaned
		}
		return result
	case []any:
		cleaned := make([]any, 0, len(v))
		for _, item := range v {
			pruned := pruneEmpty(item)
			if isEmptyValue(pruned) {
				continue
			}
			cleaned = append(cleaned, pruned)
		}
		return cleaned
	case string:
		return strings.TrimSpace(v)
	default:
		return value
	}
}

func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func boolPtr(v bool) *bool { return &v }
