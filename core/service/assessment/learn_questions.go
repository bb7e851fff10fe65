package assessment

import "learning_server/core/domain"

func options(visual, auditory, kinesthetic, reading string) []domain.StyleOption {
	return []domain.StyleOption{
		{ID: "a", Text: visual, Type: domain.StyleVisual},
		{ID: "b", Text: auditory, Type: domain.StyleAuditory},
		{ID: "c", Text: kinesthetic, Type: domain.StyleKinesthetic},
		{ID: "d", Text: reading, Type: domain.StyleReading},
	}
}

var styleQuestions = []domain.StyleQuestion{
	{
		ID:   "q1",
		Text: "When learning something new, I prefer to:",
		Options: options(
			"See diagrams, charts, or demonstrations",
			"Listen to verbal instructions or explanations",
			"Try it out and learn through practice",
			"Read written instructions or explanations",
		),
	},
	{
		ID:   "q2",
		Text: "When solving problems, I tend to:",
		Options: options(
			"Visualize the solution in my mind",
			"Talk through the problem out loud",
			"Use a hands-on approach to figure it out",
			"Write down the steps and analyze them",
		),
	},
	{
		ID:   "q3",
		Text: "I remember information best when:",
		Options: options(
			"I see it written or in an image",
			"I hear it in a discussion or lecture",
			"I physically interact with the material",
			"I read and take detailed notes",
		),
	},
	{
		ID:   "q4",
		Text: "When recalling directions to a location, I usually:",
		Options: options(
			"Picture a map or landmarks in my mind",
			"Remember verbal directions that were given",
			"Remember the feeling of traveling the route",
			"Refer to written directions I noted down",
		),
	},
	{
		ID:   "q5",
		Text: "When explaining a concept to someone else, I prefer to:",
		Options: options(
			"Draw a diagram or show images",
			"Explain it verbally with emphasis on key points",
			"Demonstrate with hands-on examples",
			"Provide written explanations with details",
		),
	},
	{
		ID:   "q6",
		Text: "When attending a presentation, I prefer:",
		Options: options(
			"Slides with graphs, charts, and images",
			"A speaker who explains concepts clearly",
			"Interactive demonstrations or activities",
			"Detailed handouts with written information",
		),
	},
	{
		ID:   "q7",
		Text: "When I need to concentrate, I prefer:",
		Options: options(
			"A clean, organized space with minimal visual distractions",
			"A quiet environment or specific background sounds",
			"The ability to move around or fidget while thinking",
			"Taking notes or writing down my thoughts",
		),
	},
	{
		ID:   "q8",
		Text: "When remembering a movie, I most easily recall:",
		Options: options(
			"The visual scenes and how things looked",
			"The dialogue and soundtrack",
			"The emotions I felt and physical reactions I had",
			"The plot details and character development",
		),
	},
	{
		ID:   "q9",
		Text: "When learning a new skill, I prefer to:",
		Options: options(
			"Watch someone demonstrate it first",
			"Have someone explain the steps verbally",
			"Try it myself right away, even if I make mistakes",
			"Read instructions or a manual thoroughly first",
		),
	},
	{
		ID:   "q10",
		Text: "When giving directions to someone, I typically:",
		Options: options(
			"Draw a map or use visual landmarks",
			"Explain the route step by step verbally",
			"Walk with them or gesture to show the way",
			"Write down detailed instructions",
		),
	},
}

var wellnessQuestions = []domain.WellnessQuestion{
	{ID: 1, Text: "How well can you focus on tasks for extended periods?", Category: domain.CategoryCognitive},
	{ID: 2, Text: "How would you rate your memory?", Category: domain.CategoryCognitive},
	{ID: 3, Text: "How well do you manage stress?", Category: domain.CategoryEmotional},
	{ID: 4, Text: "How would you rate your emotional stability?", Category: domain.CategoryEmotional},
	{ID: 5, Text: "How would you rate your physical energy levels?", Category: domain.CategoryPhysical},
	{ID: 6, Text: "How well do you sleep?", Category: domain.CategoryPhysical},
}
