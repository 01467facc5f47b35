package community

import (
	"fmt"
	"time"

	"climateguard/models"
)

// Rand is the random source the generator draws from. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// DefaultPoolSize is how many projects are generated around a new origin.
const DefaultPoolSize = 28

type template struct {
	titles       []string
	descriptions []string
	impacts      []string
}

var templates = map[models.ProjectType]template{
	models.ProjectTreePlanting: {
		titles: []string{
			"Urban Forest Initiative",
			"Neighborhood Tree Planting",
			"Park Restoration Project",
			"Street Tree Installation",
			"Community Orchard Development",
			"Green Canopy Expansion",
			"Native Species Restoration",
		},
		descriptions: []string{
			"Help plant native trees to combat urban heat island effect and improve air quality in our community.",
			"Join us in creating green corridors throughout the neighborhood to support local wildlife.",
			"Restore degraded parkland with native vegetation and create habitat for local species.",
			"Install shade trees along busy streets to reduce heat and improve pedestrian comfort.",
			"Develop a community food forest with fruit trees and edible plants for local residents.",
			"Expand tree canopy coverage to reduce urban temperatures and improve air quality.",
			"Plant native species to restore natural ecosystems and support biodiversity.",
		},
		impacts: []string{
			"2.5 tons CO₂/year per tree",
			"15% temperature reduction",
			"500 lbs CO₂ absorbed annually",
			"20% air quality improvement",
			"1 ton CO₂ offset per tree",
			"30% cooling effect",
			"50 species supported",
		},
	},
	models.ProjectCleanup: {
		titles: []string{
			"River Cleanup Drive",
			"Beach Restoration",
			"Park Cleanup Initiative",
			"Neighborhood Litter Removal",
			"Waterway Protection Project",
			"Coastal Conservation Effort",
			"Urban Waste Reduction",
		},
		descriptions: []string{
			"Remove litter and debris from local waterways to protect aquatic ecosystems.",
			"Clean up coastal areas and remove plastic pollution threatening marine life.",
			"Restore community parks by removing invasive plants and collecting trash.",
			"Organize systematic cleanup of streets, sidewalks, and public spaces.",
			"Protect local streams and rivers from pollution through community action.",
			"Preserve coastal habitats by removing harmful debris and pollutants.",
			"Reduce urban waste and improve neighborhood aesthetics through collective action.",
		},
		impacts: []string{
			"500 lbs waste removed",
			"2 miles of coastline cleaned",
			"1000 lbs debris collected",
			"50 bags of litter removed",
			"300 lbs plastic prevented from ocean",
			"5 acres restored",
			"100 wildlife habitats protected",
		},
	},
	models.ProjectEducation: {
		titles: []string{
			"Climate Action Workshop",
			"Sustainable Living Seminar",
			"Renewable Energy Fair",
			"Composting Workshop",
			"Green Building Tour",
			"Environmental Science Lab",
			"Eco-Friendly Lifestyle Class",
		},
		descriptions: []string{
			"Learn practical strategies for reducing your carbon footprint and living sustainably.",
			"Discover how to make your home more energy-efficient and environmentally friendly.",
			"Explore solar, wind, and other renewable energy options for your community.",
			"Master the art of composting to reduce waste and create nutrient-rich soil.",
			"Tour LEED-certified buildings and learn about sustainable construction practices.",
			"Hands-on experiments to understand environmental science and climate change.",
			"Comprehensive guide to adopting eco-friendly practices in daily life.",
		},
		impacts: []string{
			"Educational outreach",
			"50+ people educated",
			"Community awareness",
			"Skill development",
			"Knowledge sharing",
			"100 students reached",
			"25 families trained",
		},
	},
	models.ProjectEnergy: {
		titles: []string{
			"Solar Panel Installation",
			"Energy Audit Program",
			"LED Bulb Exchange",
			"Weatherization Project",
			"Community Solar Garden",
			"Smart Grid Initiative",
			"Renewable Energy Co-op",
		},
		descriptions: []string{
			"Help install solar panels on community buildings to reduce energy costs.",
			"Conduct home energy audits to identify efficiency improvements for residents.",
			"Exchange old incandescent bulbs for energy-efficient LED alternatives.",
			"Weatherize homes for low-income families to reduce heating and cooling costs.",
			"Build a shared solar installation to provide clean energy for the neighborhood.",
			"Implement smart energy management systems for optimal efficiency.",
			"Establish a community-owned renewable energy cooperative.",
		},
		impacts: []string{
			"10 kW clean energy",
			"30% energy savings",
			"500 kWh saved annually",
			"25% heating cost reduction",
			"50 homes powered",
			"75% grid efficiency",
			"100 members served",
		},
	},
	models.ProjectConservation: {
		titles: []string{
			"Water Conservation Project",
			"Native Plant Garden",
			"Pollinator Habitat Creation",
			"Rain Garden Installation",
			"Wildlife Corridor Development",
			"Biodiversity Restoration",
			"Ecosystem Protection Initiative",
		},
		descriptions: []string{
			"Install water-saving devices and educate residents about conservation techniques.",
			"Create beautiful gardens using drought-resistant native plants.",
			"Build habitats to support declining bee and butterfly populations.",
			"Install rain gardens to manage stormwater and prevent flooding.",
			"Connect fragmented habitats to support wildlife movement and biodiversity.",
			"Restore natural ecosystems and protect endangered species.",
			"Comprehensive ecosystem protection and restoration efforts.",
		},
		impacts: []string{
			"1000 gallons saved daily",
			"20 native species planted",
			"500 pollinators supported",
			"80% stormwater captured",
			"2 miles habitat connected",
			"15 species protected",
			"10 acres conserved",
		},
	},
}

var venues = []string{
	"Central Park", "Riverside Trail", "Community Center", "Downtown Plaza",
	"Neighborhood Park", "City Hall", "Library Gardens", "School Campus",
	"Recreation Center", "Waterfront Park", "Main Street", "Heritage Square",
	"Civic Center", "Memorial Park", "Town Square", "Botanical Garden",
	"Nature Reserve", "Community Garden", "Sports Complex", "Cultural Center",
}

var organizers = []string{
	"Green City Initiative", "EcoVolunteers", "Climate Action Network",
	"Sustainable Communities", "Environmental Alliance", "Earth Guardians",
	"Clean Energy Coalition", "Nature Conservancy", "Urban Green Space",
	"Community Environmental Group", "Eco Warriors", "Planet Protectors",
	"Green Future Foundation", "Climate Champions", "Sustainable Living Society",
}

var durations = []string{
	"1.5 hours", "2 hours", "3 hours", "4 hours", "Half day", "Full day", "2-3 hours",
}

var startHours = []int{8, 9, 10, 11, 14, 15, 16, 17, 18, 19}

var difficulties = []models.Difficulty{
	models.DifficultyEasy, models.DifficultyModerate, models.DifficultyHard,
}

// CommonRequirements apply to every project.
var CommonRequirements = []string{"Comfortable clothing", "Water bottle", "Sun protection"}

var typeRequirements = map[models.ProjectType][]string{
	models.ProjectTreePlanting: {"Work gloves", "Closed-toe shoes", "Small shovel (if available)", "Hat"},
	models.ProjectCleanup:      {"Work gloves", "Reusable bags", "Closed-toe shoes", "Trash picker (provided)"},
	models.ProjectEducation:    {"Notebook", "Pen/pencil", "Open mind", "Laptop (optional)"},
	models.ProjectEnergy:       {"Work gloves", "Safety glasses", "Basic tools (if available)", "Hard hat (provided)"},
	models.ProjectConservation: {"Work gloves", "Knee pads (optional)", "Garden tools (if available)", "Pruning shears"},
}

var images = map[models.ProjectType]string{
	models.ProjectTreePlanting: "https://images.pexels.com/photos/1072824/pexels-photo-1072824.jpeg?auto=compress&cs=tinysrgb&w=400",
	models.ProjectCleanup:      "https://images.pexels.com/photos/2547565/pexels-photo-2547565.jpeg?auto=compress&cs=tinysrgb&w=400",
	models.ProjectEducation:    "https://images.pexels.com/photos/1181533/pexels-photo-1181533.jpeg?auto=compress&cs=tinysrgb&w=400",
	models.ProjectEnergy:       "https://images.pexels.com/photos/433308/pexels-photo-433308.jpeg?auto=compress&cs=tinysrgb&w=400",
	models.ProjectConservation: "https://images.pexels.com/photos/1301856/pexels-photo-1301856.jpeg?auto=compress&cs=tinysrgb&w=400",
}

// Requirements returns the gear list for a project type.
func Requirements(t models.ProjectType) []string {
	out := make([]string, 0, len(CommonRequirements)+4)
	out = append(out, CommonRequirements...)
	return append(out, typeRequirements[t]...)
}

// ImageURL returns the stock image for a project type; unknown types get the
// tree-planting image.
func ImageURL(t models.ProjectType) string {
	if u, ok := images[t]; ok {
		return u
	}
	return images[models.ProjectTreePlanting]
}

// Generate builds n synthetic projects scattered within ~0.4° of origin,
// dated 1..45 days after now.
func Generate(origin models.Coordinates, now time.Time, rng Rand, n int) []models.CommunityProject {
	out := make([]models.CommunityProject, 0, n)
	stamp := now.UnixMilli()
	for i := 0; i < n; i++ {
		typ := models.ProjectTypes[rng.IntN(len(models.ProjectTypes))]
		tpl := templates[typ]

		maxP := rng.IntN(100) + 20
		out = append(out, models.CommunityProject{
			ID:              fmt.Sprintf("project_%d_%d", i+1, stamp),
			Title:           tpl.titles[rng.IntN(len(tpl.titles))],
			Description:     tpl.descriptions[rng.IntN(len(tpl.descriptions))],
			Type:            typ,
			Participants:    int(rng.Float64() * float64(maxP) * 0.85),
			MaxParticipants: maxP,
			Date:            now.AddDate(0, 0, rng.IntN(45)+1).Format("2006-01-02"),
			Time:            startTime(rng),
			Location:        venues[rng.IntN(len(venues))],
			Coordinates: models.Coordinates{
				Latitude:  origin.Latitude + (rng.Float64()-0.5)*0.8,
				Longitude: origin.Longitude + (rng.Float64()-0.5)*0.8,
			},
			Impact:       tpl.impacts[rng.IntN(len(tpl.impacts))],
			Organizer:    organizers[rng.IntN(len(organizers))],
			Difficulty:   difficulties[rng.IntN(len(difficulties))],
			Duration:     durations[rng.IntN(len(durations))],
			Requirements: Requirements(typ),
			ImageURL:     ImageURL(typ),
			Status:       models.ProjectActive,
			CreatedAt:    now,
		})
	}
	return out
}

func startTime(rng Rand) string {
	hour := startHours[rng.IntN(len(startHours))]
	minutes := []string{"00", "15", "30", "45"}[rng.IntN(4)]
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	if hour > 12 {
		hour -= 12
	}
	return fmt.Sprintf("%d:%s %s", hour, minutes, period)
}
