package store

import (
	"time"

	"github.com/mysteryserved/tourquest/internal/tourquest"
)

// seedVersion is compared against the persisted data_version marker.
// A mismatch at load time runs migrateData over the stored records and
// restamps the marker; user data is never discarded for a version bump.
const seedVersion = "3"

// migrateData upgrades records written under an older data version in
// place. Upgrades are additive: normalize fields older versions left
// unset to the current defaults.
func migrateData(tours []tourquest.Tour, stops []tourquest.Stop) {
	for i := range stops {
		if stops[i].FailuresAllowed <= 0 {
			stops[i].FailuresAllowed = tourquest.DefaultFailuresAllowed
		}
		if stops[i].GPSRadius <= 0 {
			stops[i].GPSRadius = tourquest.DefaultGPSRadius
		}
	}
}

// seedDemoData returns the demo dataset: the Sherlock Holmes Institute
// tour and its five stops. IDs are fixed so repeated reseeds produce
// identical content.
func seedDemoData() ([]tourquest.Tour, []tourquest.Stop) {
	const tourID = "demo-sherlock-tour"
	now := time.Now().UTC()

	tours := []tourquest.Tour{{
		ID:          tourID,
		Name:        "The Sherlock Holmes Institute Final Exam",
		Description: "Welcome, recruit! You have been selected for the final examination at the Sherlock Holmes Institute. Visit local restaurants, solve puzzles, and prove your detective skills to earn your certification as a Sunshine Agent.",
		City:        "St. Petersburg, FL",
		Theme:       "detective",
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}}

	stops := []tourquest.Stop{
		{
			ID:               "stop-1",
			TourID:           tourID,
			StopNumber:       1,
			Name:             "Mystery Served HQ",
			Address:          "116 Central Ave, St. Petersburg, FL 33701",
			StoryText:        "Welcome, Detective Trainee! Your application to the Mystery Served Investigations unit has been received. Before we can process your credentials, you must complete your first assignment.",
			Instructions:     `Ask the server for your "Employment Application" envelope. Inside you'll find a case file with hidden clues. Look carefully at the Case File Numbers - the code is usually a simple 4-digit pin like 1212!`,
			MenuItems:        []string{"Cuban Sandwich", "Café con Leche", "Croquetas"},
			Tips:             []string{"The Cuban comes highly recommended!", "Ask for half to-go for later stops"},
			VerificationType: tourquest.VerificationText,
			Password:         "1212",
			MediaType:        tourquest.MediaImage,
			FailuresAllowed:  2,
			AutoShowHint:     true,
			EnableSkip:       true,
			GPSLat:           f64(27.7706),
			GPSLng:           f64(-82.6366),
			GPSRadius:        50,
			TransitionText:   "Excellent work, recruit! Your observation skills are promising.",
			NextStopPreview:  "Head to Bodega on Central for your next assignment.",
			CreatedAt:        now,
		},
		{
			ID:               "stop-2",
			TourID:           tourID,
			StopNumber:       2,
			Name:             "Bodega on Central",
			Address:          "1120 Central Ave, St. Petersburg, FL 33705",
			StoryText:        `You've arrived at the Bodega. The Cuban comes highly recommended here. Once you've ordered, speak to the waitress about your "detective training materials."`,
			Instructions:     `Ask the waitress for the silver lockbox. The first clue is a classic detective word... maybe "mystery"? Once open, use the slide ruler inside to decode your next password.`,
			MenuItems:        []string{"Cuban Sandwich", "Media Noche", "Ropa Vieja"},
			Tips:             []string{"Request half wrapped to-go", "The dance is the Electric Slide!"},
			VerificationType: tourquest.VerificationText,
			Password:         "mystery",
			MediaType:        tourquest.MediaImage,
			FailuresAllowed:  2,
			AutoShowHint:     true,
			EnableSkip:       true,
			GPSLat:           f64(27.7710),
			GPSLng:           f64(-82.6500),
			GPSRadius:        50,
			TransitionText:   "Well done! You've cracked the cipher. The next location awaits.",
			NextStopPreview:  "Your next stop is Kalamazoo - cross over 10th Ave.",
			CreatedAt:        now,
		},
		{
			ID:               "stop-3",
			TourID:           tourID,
			StopNumber:       3,
			Name:             "Kalamazoo",
			Address:          "1400 Central Ave, St. Petersburg, FL 33705",
			StoryText:        "Intelligence suggests this location may be compromised. Use your detective instincts to complete this assignment quickly.",
			Instructions:     `Order a drink and ask the bartender for the "classified envelope." Inside is a word scramble puzzle. Unscramble the letters to reveal the password.`,
			MenuItems:        []string{"Craft Beer Selection", "Wings", "Sliders"},
			Tips:             []string{"Great happy hour specials!"},
			VerificationType: tourquest.VerificationText,
			Password:         "MAGNIFY",
			FailuresAllowed:  2,
			AutoShowHint:     true,
			EnableSkip:       true,
			GPSLat:           f64(27.7712),
			GPSLng:           f64(-82.6550),
			GPSRadius:        50,
			TransitionText:   "Your instincts are sharp! One more stop remains.",
			NextStopPreview:  "Head to Poppo's for your burrito briefing.",
			CreatedAt:        now,
		},
		{
			ID:               "stop-4",
			TourID:           tourID,
			StopNumber:       4,
			Name:             "Poppo's Taqueria",
			Address:          "1600 Central Ave, St. Petersburg, FL 33705",
			StoryText:        "Welcome to stop number four! You found your way through the investigation. Check out the menu - you have rice options, bean options, cheese options, and protein options with cold toppings included.",
			Instructions:     "We recommend the chicken with black beans and white rice! Ask your server for the final puzzle. The menu items contain hidden numbers - combine them in order for your access code.",
			MenuItems:        []string{"Build Your Own Burrito", "Chicken Bowl", "Carnitas Tacos"},
			Tips:             []string{"Chicken with black beans and white rice is the local favorite!", "Don't forget the Celsius drink!"},
			VerificationType: tourquest.VerificationText,
			Password:         "4521",
			FailuresAllowed:  2,
			AutoShowHint:     true,
			EnableSkip:       true,
			GPSLat:           f64(27.7715),
			GPSLng:           f64(-82.6600),
			GPSRadius:        50,
			TransitionText:   "Outstanding work! Proceed to your final examination.",
			NextStopPreview:  "The final stop awaits - prepare for the blacklight reveal!",
			CreatedAt:        now,
		},
		{
			ID:               "stop-5",
			TourID:           tourID,
			StopNumber:       5,
			Name:             "The Final Examination",
			Address:          "2000 Central Ave, St. Petersburg, FL 33705",
			StoryText:        "Agents, the mission has brought you to your final stop. The city streets hum with music, the band is playing, and the dolphins are dancing. Your task is simple, but requires teamwork.",
			Instructions:     "Check your assignment numbers: each menu item contains a single digit. Combine them in order to form the 4-digit access code. BONUS: Use the blacklight on the table to reveal the secret dessert menu and get 15% off your next tour!",
			MenuItems:        []string{"Coffee", "Hot Chocolate", "Secret Dessert Menu (use blacklight!)"},
			Tips:             []string{"Work together on this one!", "The blacklight reveals hidden surprises!"},
			VerificationType: tourquest.VerificationText,
			Password:         "AGENT",
			FailuresAllowed:  2,
			AutoShowHint:     true,
			EnableSkip:       true,
			GPSLat:           f64(27.7720),
			GPSLng:           f64(-82.6650),
			GPSRadius:        50,
			TransitionText:   "CONGRATULATIONS! You have completed the Sherlock Holmes Institute Final Exam!",
			NextStopPreview:  "You are now a certified Sunshine Agent!",
			CreatedAt:        now,
		},
	}

	return tours, stops
}

func f64(v float64) *float64 {
	return &v
}
