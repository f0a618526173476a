package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/rhetorik/internal/app"
	"github.com/OFFIS-RIT/rhetorik/internal/util"
	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
	"github.com/OFFIS-RIT/rhetorik/pkg/graph"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Lade..."
	}

	header := TitleStyle.Render("Rhetorik") + " " + HintStyle.Render("Emotionen und Rhetorik in Nachrichtenartikeln")

	var body string
	switch {
	case a.hero:
		body = a.renderHero()
	case a.snap.Artifact != nil:
		body = a.renderResults()
	}

	lines := []string{header}
	if a.loading {
		lines = append(lines, a.spinner.View()+" Analysiere Artikel...")
	}
	if a.err != nil && !a.hero {
		lines = append(lines, ErrorStyle.Width(a.width).Render(analysis.UserMessage(a.err)+"  (n: neue Analyse)"))
	}
	if body != "" {
		lines = append(lines, body)
	}
	lines = append(lines, a.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (a App) renderHero() string {
	var b strings.Builder

	b.WriteString(LabelStyle.Render("Artikel-URL") + "\n")
	b.WriteString(a.url.View() + "\n")
	if strings.TrimSpace(a.url.Value()) == "" {
		b.WriteString(HintStyle.Render("URL eingeben, um zu analysieren") + "\n\n")
	} else {
		b.WriteString(HintStyle.Render("enter: URL analysieren") + "\n\n")
	}

	b.WriteString(LabelStyle.Render("Oder Artikeltext einfügen") + "\n")
	b.WriteString(a.text.View() + "\n")
	n := utf8.RuneCountInString(strings.TrimSpace(a.text.Value()))
	if n < app.MinTextChars {
		b.WriteString(HintStyle.Render(fmt.Sprintf("%d/%d Zeichen", n, app.MinTextChars)) + "\n")
	} else {
		b.WriteString(HintStyle.Render("ctrl+s: Text analysieren") + "\n")
	}

	return b.String()
}

func (a App) renderResults() string {
	graphWidth := max(a.width/3, 30)
	articleWidth := max(a.width-graphWidth-4, 30)
	height := max(a.height-6, 8)

	article := PanelStyle.Width(articleWidth).Render(a.renderArticle(articleWidth-4, height))
	panel := PanelStyle.Width(graphWidth).Render(a.renderGraph(graphWidth-4, height))
	return lipgloss.JoinHorizontal(lipgloss.Top, article, panel)
}

func (a App) renderArticle(width, height int) string {
	art := a.snap.Artifact
	var lines []string

	title := art.ArticleMeta.Title
	if title == "" {
		title = art.ArticleMeta.URL
	}
	if title != "" {
		lines = append(lines, LabelStyle.Render(util.TruncateRunes(title, width)))
	}

	var shares []string
	for _, s := range a.snap.Aggregate.Distribution() {
		if s.Count == 0 {
			continue
		}
		shares = append(shares, emotionStyle(s.Emotion).Render(fmt.Sprintf("%s %.0f%%", s.Emotion, s.Percent)))
	}
	if len(shares) > 0 {
		lines = append(lines, strings.Join(shares, "  "))
	}
	if level := art.Summary.EmotionalizationLevel; level != "" {
		lines = append(lines, HintStyle.Render("Emotionalisierung: "+string(level)))
	}
	if topics := art.Summary.MainTopics; len(topics) > 0 {
		lines = append(lines, HintStyle.Render("Themen: "+strings.Join(topics, ", ")))
	}
	lines = append(lines, "")

	sentences := art.Sentences
	room := max(height-len(lines), 1)
	start := 0
	if a.cursor >= room {
		start = a.cursor - room + 1
	}
	for i := start; i < len(sentences) && i < start+room; i++ {
		lines = append(lines, a.renderSentence(i, width))
	}

	return strings.Join(lines, "\n")
}

func (a App) renderSentence(i, width int) string {
	s := a.snap.Artifact.Sentences[i]
	marker := emotionStyle(s.Emotion.Label).Render("▌")
	text := util.TruncateRunes(s.Text, max(width-2, 1))

	switch {
	case i == a.cursor:
		text = SelectedSentence.Render(text)
	case !a.sentenceVisible(s.ID):
		text = DimmedStyle.Render(text)
	}
	if s.ID == a.snap.State.SelectedSentenceID {
		marker = LabelStyle.Render("▶")
	}
	return marker + " " + text
}

func (a App) sentenceVisible(sentenceID string) bool {
	if a.snap.Graph == nil {
		return true
	}
	id, ok := a.snap.Graph.SentenceNode(sentenceID)
	if !ok {
		return true
	}
	return a.snap.Visible.Contains(id)
}

func (a App) renderGraph(width, height int) string {
	st := a.snap.State
	lines := []string{LabelStyle.Render("Ansicht: " + string(st.Mode))}

	switch st.Mode {
	case graph.ModeEmotion:
		lines = append(lines, emotionStyle(st.SelectedEmotion).Render(string(st.SelectedEmotion)))
	case graph.ModeTopic:
		lines = append(lines, HintStyle.Render("Thema: "+a.nodeLabel(st.SelectedTopicID)))
	case graph.ModeSentence:
		lines = append(lines, HintStyle.Render("Satz: "+st.SelectedSentenceID))
	case graph.ModeActor:
		lines = append(lines, HintStyle.Render("Akteur: "+a.nodeLabel(st.FocusedActorID)))
	}

	topics := a.topicNodes()
	if a.topic < len(topics) {
		lines = append(lines, HintStyle.Render("[ ] Thema: ")+util.TruncateRunes(topics[a.topic].Label, width-11))
	}
	actors := a.actorNodes()
	if a.actor < len(actors) {
		lines = append(lines, HintStyle.Render("< > Akteur: ")+util.TruncateRunes(actors[a.actor].Label, width-12))
	}

	g := a.snap.Graph
	visible := 0
	for _, n := range g.Nodes {
		if a.snap.Visible.Contains(n.ID) {
			visible++
		}
	}
	lines = append(lines, HintStyle.Render(fmt.Sprintf("Sichtbar: %d/%d Knoten", visible, len(g.Nodes))), "")

	for _, n := range g.Nodes {
		if len(lines) >= height {
			break
		}
		if n.Type == graph.TypeWheel || !a.snap.Visible.Contains(n.ID) {
			continue
		}
		lines = append(lines, a.renderNode(n, width))
	}

	return strings.Join(lines, "\n")
}

func (a App) renderNode(n graph.Node, width int) string {
	pos := ""
	if p, ok := a.snap.Positions[n.ID]; ok {
		pos = fmt.Sprintf(" (%.0f, %.0f)", p.X, p.Y)
	}
	label := util.TruncateRunes(n.Label, max(width-utf8.RuneCountInString(pos)-len(n.Type)-3, 4))
	line := fmt.Sprintf("%s %s", n.Type, label)
	if n.EmotionLabel != "" {
		line = emotionStyle(n.EmotionLabel).Render(line)
	}
	return line + HintStyle.Render(pos)
}

func (a App) nodeLabel(id string) string {
	if a.snap.Graph != nil {
		if n, ok := a.snap.Graph.Node(id); ok {
			return n.Label
		}
	}
	return id
}

func (a App) renderStatusBar() string {
	var hint string
	switch {
	case a.hero:
		hint = "tab: Feld wechseln · ctrl+e: Beispiel · esc: zurück · ctrl+c: beenden"
	case a.snap.Artifact != nil:
		hint = "j/k: Satz · enter: Satz wählen · 1-7: Emotion · t: Thema · a: Akteur · ⌫: Auswahl lösen · r: Übersicht · n: neu · q: beenden"
	default:
		hint = "n: neue Analyse · e: Beispiel · q: beenden"
	}
	return StatusBar.Width(a.width).Render(hint)
}
