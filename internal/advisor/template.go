package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/questguild/questguild/internal/dependencies/clock"
	"github.com/questguild/questguild/internal/dependencies/random"
	"github.com/questguild/questguild/internal/model"
)

var keywordDescriptions = []struct {
	keyword  string
	template string
}{
	{"dragon", "Brave hero! The ancient dragon %s threatens our kingdom. You must venture into the fiery mountains and face the beast in its lair!"},
	{"village", "The peaceful village of %s is under siege! Defend the innocent and restore hope to the townsfolk in this crucial mission!"},
	{"artifact", "The legendary %s has been lost for centuries. Journey through forgotten ruins and overcome mystical guardians to reclaim it!"},
}

var questTemplates = []string{
	"Brave adventurer! The %s awaits your courage. Journey through treacherous lands, face formidable foes, and return with glory!",
	"Hero of renown! The %s calls for your expertise. Navigate ancient ruins, solve mystical puzzles, and claim the treasure within!",
	"Valiant warrior! The %s demands your strength. Battle dark forces and restore peace to the troubled realm!",
	"Wise traveler! The %s requires your wisdom. Uncover forgotten secrets and outsmart cunning adversaries!",
	"Noble champion! The %s needs your valor. Confront the shadowy threat and write your name in the annals of history!",
}

// Briefing templates take active, urgent and completed counts.
var summaryTemplates = []string{
	"Heroic one, your current endeavors shine with promise! **%d** active quests demand your attention, with **%d** requiring urgent action. **%d** glorious victories already adorn your legacy!",
	"Valiant warrior, the guild observes your progress with pride! **%d** missions await your prowess, **%d** of which call for immediate valor. **%d** triumphs already echo through the halls!",
	"Brave soul, your quest log brims with potential glory! **%d** adventures call your name, **%d** with pressing deadlines. **%d** conquests already testify to your might!",
	"Noble hero, your journey inspires all who witness it! **%d** challenges stand before you, **%d** demanding swift action. **%d** achievements already mark your legendary path!",
}

var motivations = []string{
	"The fates weave patterns of glory around your path!",
	"Your legend grows with every challenge faced!",
	"Courage, hero! The realm watches with bated breath!",
	"Destiny's threads align in your favor, brave one!",
}

const (
	emptyLogSummary = "Wise hero, your quest log stands empty, a blank canvas awaiting your next great masterpiece! The guild eagerly anticipates your next legendary undertaking!"
	briefingHeading = "## Guild Advisor's Briefing"
	maxUrgentTitles = 3
)

// TemplateAdvisor answers from canned text. Randomness and time are injected.
type TemplateAdvisor struct {
	rng   random.Random
	clock clock.Clock
}

var _ Advisor = (*TemplateAdvisor)(nil)

func NewTemplateAdvisor(rng random.Random, clk clock.Clock) *TemplateAdvisor {
	return &TemplateAdvisor{rng: rng, clock: clk}
}

// Describe uses a themed text when the title names a dragon, village or
// artifact, otherwise a random template.
func (a *TemplateAdvisor) Describe(_ context.Context, title string) (string, error) {
	lower := strings.ToLower(title)
	for _, d := range keywordDescriptions {
		if strings.Contains(lower, d.keyword) {
			return fmt.Sprintf(d.template, title), nil
		}
	}
	return fmt.Sprintf(random.Pick(a.rng, questTemplates), title), nil
}

// SuggestPriority rates a quest by how soon it is due and by urgent words
// in its title.
func (a *TemplateAdvisor) SuggestPriority(_ context.Context, title string, due time.Time) (model.Priority, error) {
	return suggestPriority(title, due.Sub(a.clock.Now())), nil
}

func suggestPriority(title string, untilDue time.Duration) model.Priority {
	lower := strings.ToLower(title)
	day := 24 * time.Hour

	switch {
	case untilDue <= day, strings.Contains(lower, "urgent"), strings.Contains(lower, "emergency"):
		return model.PriorityHigh
	case untilDue <= 3*day, strings.Contains(lower, "important"), strings.Contains(lower, "critical"):
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// Summarize writes a markdown briefing of the quest log.
func (a *TemplateAdvisor) Summarize(_ context.Context, active, completed, nearDeadline []*model.Quest) (string, error) {
	if len(active) == 0 {
		return briefingHeading + "\n\n" + emptyLogSummary, nil
	}

	var b strings.Builder
	b.WriteString(briefingHeading + "\n\n")
	fmt.Fprintf(&b, random.Pick(a.rng, summaryTemplates), len(active), len(nearDeadline), len(completed))

	if len(nearDeadline) > 0 {
		titles := make([]string, 0, maxUrgentTitles)
		for _, q := range nearDeadline {
			if len(titles) == maxUrgentTitles {
				break
			}
			titles = append(titles, q.Title)
		}
		b.WriteString("\n\n**URGENT:** " + strings.Join(titles, ", "))
		if len(nearDeadline) > maxUrgentTitles {
			b.WriteString(" and more")
		}
		b.WriteString(" require your immediate valor!")
	}

	b.WriteString("\n\n_" + random.Pick(a.rng, motivations) + "_")
	return b.String(), nil
}
