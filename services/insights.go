package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

const topRatedCount = 5

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#AD0F8F"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F77F00"))
	valueStyle   = lipgloss.NewStyle().Bold(true)
	moneyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2A9D8F"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#1E90FF"))
	frameStyle   = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#264653")).
			Padding(0, 1)
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(listings []*models.Listing) *models.Summary {
	report := &models.Summary{
		ListingsByBorough: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)
	report.MinPrice = listings[0].Price
	report.MaxPrice = listings[0].Price
	report.MostExpensive = listings[0]

	var totalPrice, totalFee float64
	for _, l := range listings {
		totalPrice += l.Price
		totalFee += l.ServiceFee
		if l.Price < report.MinPrice {
			report.MinPrice = l.Price
		}
		if l.Price > report.MaxPrice {
			report.MaxPrice = l.Price
			report.MostExpensive = l
		}
		report.ListingsByBorough[l.Borough]++
	}
	report.AveragePrice = round2(totalPrice / float64(len(listings)))
	report.AverageServiceFee = round2(totalFee / float64(len(listings)))
	report.MinPrice = round2(report.MinPrice)
	report.MaxPrice = round2(report.MaxPrice)

	rated := make([]*models.Listing, len(listings))
	copy(rated, listings)
	sort.SliceStable(rated, func(i, j int) bool {
		return rated[i].ReviewRating > rated[j].ReviewRating
	})
	if len(rated) > topRatedCount {
		rated = rated[:topRatedCount]
	}
	report.TopRated = rated

	s.logger.Debug("[insights] Summarised %d listings across %d boroughs",
		report.TotalListings, len(report.ListingsByBorough))
	return report
}

// Print writes the summary as a framed terminal report.
func (s *InsightService) Print(w io.Writer, r *models.Summary) {
	var b strings.Builder

	b.WriteString(titleStyle.Render("NYC AIRBNB LISTINGS") + "\n\n")

	b.WriteString(sectionStyle.Render("Overview") + "\n")
	fmt.Fprintf(&b, "Listings           : %s\n", valueStyle.Render(fmt.Sprint(r.TotalListings)))
	if r.TotalListings > 0 {
		fmt.Fprintf(&b, "Average price      : %s\n", moneyStyle.Render(fmt.Sprintf("$%.2f", r.AveragePrice)))
		fmt.Fprintf(&b, "Price range        : %s\n", moneyStyle.Render(fmt.Sprintf("$%.2f – $%.2f", r.MinPrice, r.MaxPrice)))
		fmt.Fprintf(&b, "Average service fee: %s\n", moneyStyle.Render(fmt.Sprintf("$%.2f", r.AverageServiceFee)))
	} else {
		b.WriteString("No listings matched\n")
	}

	if r.MostExpensive != nil {
		b.WriteString("\n" + sectionStyle.Render("Most Expensive Listing") + "\n")
		fmt.Fprintf(&b, "%s\n", truncate(r.MostExpensive.Name, 50))
		fmt.Fprintf(&b, "%s, %s · %s\n", r.MostExpensive.Neighborhood, r.MostExpensive.Borough,
			moneyStyle.Render(fmt.Sprintf("$%.2f/night", r.MostExpensive.Price)))
	}

	if len(r.TopRated) > 0 {
		b.WriteString("\n" + sectionStyle.Render(fmt.Sprintf("Top %d Rated", topRatedCount)) + "\n")
		for i, l := range r.TopRated {
			fmt.Fprintf(&b, "%d. %-40s %s\n", i+1, truncate(l.Name, 38),
				valueStyle.Render(fmt.Sprintf("%.0f ★", l.ReviewRating)))
		}
	}

	if len(r.ListingsByBorough) > 0 {
		b.WriteString("\n" + sectionStyle.Render("Listings by Borough") + "\n")
		type boroughCount struct {
			borough string
			count   int
		}
		counts := make([]boroughCount, 0, len(r.ListingsByBorough))
		maxCount := 0
		for borough, n := range r.ListingsByBorough {
			counts = append(counts, boroughCount{borough, n})
			if n > maxCount {
				maxCount = n
			}
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].count != counts[j].count {
				return counts[i].count > counts[j].count
			}
			return counts[i].borough < counts[j].borough
		})
		for _, bc := range counts {
			width := 1 + bc.count*30/maxCount
			fmt.Fprintf(&b, "%-15s %s %d\n", bc.borough, barStyle.Render(strings.Repeat("█", width)), bc.count)
		}
	}

	fmt.Fprintln(w, frameStyle.Render(strings.TrimRight(b.String(), "\n")))
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
