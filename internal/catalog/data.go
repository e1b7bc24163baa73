package catalog

import "github.com/voxkey/voxkey/pkg/types"

// defaultCategories is the built-in category list. Icon names are hints for
// the rendering layer.
var defaultCategories = []types.Category{
	{ID: "basic", Name: "Basic Needs", Icon: "MessageSquare"},
	{ID: "food", Name: "Food & Drink", Icon: "Utensils"},
	{ID: "medical", Name: "Medical", Icon: "Stethoscope"},
	{ID: "comfort", Name: "Comfort", Icon: "Home"},
	{ID: "social", Name: "Social", Icon: "Users"},
	{ID: "feelings", Name: "Feelings", Icon: "Heart"},
	{ID: "emergency", Name: "Emergency", Icon: "HelpCircle"},
}

// defaultPhrases is the built-in phrase bank.
var defaultPhrases = []types.Phrase{
	// Basic Needs
	{ID: "1", Text: "I need help", Category: "basic"},
	{ID: "2", Text: "Yes", Category: "basic"},
	{ID: "3", Text: "No", Category: "basic"},
	{ID: "4", Text: "Thank you", Category: "basic"},
	{ID: "5", Text: "Please wait", Category: "basic"},
	{ID: "6", Text: "I don't understand", Category: "basic"},
	{ID: "7", Text: "Can you repeat that?", Category: "basic"},

	// Food & Drink
	{ID: "8", Text: "I'm hungry", Category: "food"},
	{ID: "9", Text: "I'm thirsty", Category: "food"},
	{ID: "10", Text: "I would like some water", Category: "food"},
	{ID: "11", Text: "I would like something to eat", Category: "food"},
	{ID: "12", Text: "More please", Category: "food"},
	{ID: "13", Text: "That's enough", Category: "food"},

	// Medical
	{ID: "14", Text: "I'm in pain", Category: "medical"},
	{ID: "15", Text: "I need my medication", Category: "medical"},
	{ID: "16", Text: "I need to see a doctor", Category: "medical"},
	{ID: "17", Text: "I feel dizzy", Category: "medical"},
	{ID: "18", Text: "I need to use the bathroom", Category: "medical"},

	// Comfort
	{ID: "19", Text: "I'm cold", Category: "comfort"},
	{ID: "20", Text: "I'm hot", Category: "comfort"},
	{ID: "21", Text: "I'm uncomfortable", Category: "comfort"},
	{ID: "22", Text: "I need to change position", Category: "comfort"},
	{ID: "23", Text: "I need a blanket", Category: "comfort"},

	// Social
	{ID: "24", Text: "I'd like to talk", Category: "social"},
	{ID: "25", Text: "Can we watch TV?", Category: "social"},
	{ID: "26", Text: "I'd like to go outside", Category: "social"},
	{ID: "27", Text: "Can you call my family?", Category: "social"},
	{ID: "28", Text: "I'd like some company", Category: "social"},

	// Feelings
	{ID: "29", Text: "I'm happy", Category: "feelings"},
	{ID: "30", Text: "I'm sad", Category: "feelings"},
	{ID: "31", Text: "I'm frustrated", Category: "feelings"},
	{ID: "32", Text: "I'm tired", Category: "feelings"},
	{ID: "33", Text: "I'm bored", Category: "feelings"},

	// Emergency
	{ID: "34", Text: "Emergency! I need help now!", Category: "emergency"},
	{ID: "35", Text: "Call 911", Category: "emergency"},
	{ID: "36", Text: "I can't breathe", Category: "emergency"},
	{ID: "37", Text: "Something is wrong", Category: "emergency"},
}
