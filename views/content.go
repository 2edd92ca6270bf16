package views

// Stats are the headline numbers on the about page.
var Stats = []Stat{
	{Number: "3+", Label: "Years Experience"},
	{Number: "50+", Label: "Projects Completed"},
	{Number: "20+", Label: "Technologies Mastered"},
	{Number: "100%", Label: "Client Satisfaction"},
}

// Skills is the skill matrix on the about page.
var Skills = []SkillCategory{
	{
		Title: "Frontend",
		Icon:  "🎨",
		Skills: []Skill{
			{"React", 90}, {"Next.js", 85}, {"TypeScript", 88},
			{"Tailwind CSS", 92}, {"JavaScript", 90}, {"HTML/CSS", 95},
		},
	},
	{
		Title: "Backend",
		Icon:  "⚙️",
		Skills: []Skill{
			{"Go", 85}, {"Node.js", 85}, {"Python", 75},
			{"PostgreSQL", 78}, {"MongoDB", 82}, {"REST APIs", 88},
		},
	},
	{
		Title: "Tools & Others",
		Icon:  "🛠️",
		Skills: []Skill{
			{"Git", 90}, {"Docker", 70}, {"AWS", 65},
			{"Figma", 80}, {"Jest", 75}, {"Webpack", 70},
		},
	},
}

// Timeline is the resume's experience section, newest first.
var Timeline = []Experience{
	{Period: "2023 - Present", Role: "Software Engineer", Company: "Freelance", Summary: "Web applications and APIs for small businesses."},
	{Period: "2021 - 2023", Role: "Junior Developer", Company: "Agency", Summary: "Marketing sites, CMS integrations and hosting on AWS."},
}
