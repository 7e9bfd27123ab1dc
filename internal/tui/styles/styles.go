package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/AGLOP-1354/taskboard/internal/task"
)

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple (violet-400)
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red (red-400)
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray (gray-500)
	BlueColor      = lipgloss.Color("#60A5FA") // Blue

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)
	Text      = lipgloss.NewStyle().Foreground(TextColor)

	// Stage colors
	StatusTodo       = lipgloss.Color("#9CA3AF") // Gray
	StatusInProgress = lipgloss.Color("#60A5FA") // Blue
	StatusCompleted  = lipgloss.Color("#10B981") // Green

	// Priority colors
	PriorityHigh   = lipgloss.Color("#F87171") // Red
	PriorityMedium = lipgloss.Color("#F59E0B") // Amber
	PriorityLow    = lipgloss.Color("#10B981") // Green

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// Board columns
	Column = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1)

	ColumnDropTarget = Column.
				BorderForeground(PrimaryColor)

	ColumnHeading = lipgloss.NewStyle().
			Bold(true)

	// Cards
	Card = lipgloss.NewStyle().
		Foreground(TextColor)

	CardSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor).
			Background(SurfaceColor)

	CardGrabbed = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor).
			Background(PrimaryColor)

	CardDone = lipgloss.NewStyle().
			Foreground(MutedColor).
			Strikethrough(true)

	CardMeta = lipgloss.NewStyle().
			Foreground(MutedColor)

	Overdue = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	// Content area
	ContentBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	// Help bar
	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	// Footer / status bar
	StatusBar = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SurfaceColor).
			Padding(0, 1)

	// Notice banner for failed actions
	NoticeBanner = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(ErrorColor).
			Bold(true).
			Padding(0, 1)

	// Error message
	ErrorMsg = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// Form styles
	FormLabel = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(13)

	FormLabelFocused = lipgloss.NewStyle().
				Foreground(SecondaryColor).
				Bold(true).
				Width(13)

	FormButton = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(PrimaryColor).
			Bold(true).
			Padding(0, 2)

	FormButtonDisabled = lipgloss.NewStyle().
				Foreground(MutedColor).
				Background(SurfaceColor).
				Padding(0, 2)

	// Filter styles
	FilterBar = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(1, 2)

	FilterOption = lipgloss.NewStyle().
			Foreground(MutedColor).
			MarginRight(1)

	FilterOptionActive = lipgloss.NewStyle().
				Foreground(SecondaryColor).
				Bold(true).
				MarginRight(1)

	FilterRowFocused = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	// List view
	ListHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(MutedColor).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(BorderColor)
)

// StatusColor returns the color for a given stage
func StatusColor(status task.Status) lipgloss.Color {
	switch status {
	case task.StatusTodo:
		return StatusTodo
	case task.StatusInProgress:
		return StatusInProgress
	case task.StatusCompleted:
		return StatusCompleted
	default:
		return MutedColor
	}
}

// StatusIcon returns an icon for a given stage
func StatusIcon(status task.Status) string {
	switch status {
	case task.StatusTodo:
		return "○"
	case task.StatusInProgress:
		return "●"
	case task.StatusCompleted:
		return "✓"
	default:
		return "·"
	}
}

// PriorityColor returns the color for a given priority
func PriorityColor(p task.Priority) lipgloss.Color {
	switch p {
	case task.PriorityHigh:
		return PriorityHigh
	case task.PriorityMedium:
		return PriorityMedium
	case task.PriorityLow:
		return PriorityLow
	default:
		return MutedColor
	}
}

// PriorityBadge renders a short colored priority marker.
func PriorityBadge(p task.Priority) string {
	label := "MED"
	switch p {
	case task.PriorityHigh:
		label = "HIGH"
	case task.PriorityLow:
		label = "LOW"
	}
	return lipgloss.NewStyle().Foreground(PriorityColor(p)).Bold(p == task.PriorityHigh).Render(label)
}
