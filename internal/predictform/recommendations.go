package predictform

// Recommendation is one entry of the recommendations panel.
type Recommendation struct {
	Icon        string
	Title       string
	Description string
}

var riskRecommendations = []Recommendation{
	{Icon: "fas fa-user-md", Title: "Consult a Healthcare Provider", Description: "Schedule an appointment with your doctor for proper diabetes screening and diagnosis."},
	{Icon: "fas fa-heartbeat", Title: "Monitor Blood Sugar", Description: "Regular blood glucose monitoring can help track your health status."},
	{Icon: "fas fa-apple-alt", Title: "Healthy Diet", Description: "Follow a balanced diet low in processed sugars and high in fiber."},
	{Icon: "fas fa-running", Title: "Regular Exercise", Description: "Engage in at least 150 minutes of moderate exercise per week."},
}

var healthyRecommendations = []Recommendation{
	{Icon: "fas fa-check-circle", Title: "Maintain Healthy Lifestyle", Description: "Continue your current healthy habits to maintain low diabetes risk."},
	{Icon: "fas fa-calendar-check", Title: "Regular Check-ups", Description: "Schedule annual health screenings to monitor your health status."},
	{Icon: "fas fa-apple-alt", Title: "Balanced Nutrition", Description: "Maintain a balanced diet rich in vegetables, fruits, and whole grains."},
	{Icon: "fas fa-dumbbell", Title: "Stay Active", Description: "Continue regular physical activity to maintain your health."},
}

// RecommendationStyleID marks the recommendation stylesheet so it is added once.
const RecommendationStyleID = "recommendation-styles"

// RecommendationCSS styles the recommendation list.
const RecommendationCSS = `.recommendation-item { display: flex; align-items: flex-start; gap: 1rem; padding: 1.5rem; background: white; border-radius: 12px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); margin-bottom: 1rem; transition: all 0.3s ease; }
.recommendation-item:hover { transform: translateY(-2px); box-shadow: 0 4px 15px rgba(0,0,0,0.15); }
.recommendation-icon { width: 50px; height: 50px; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); border-radius: 50%; display: flex; align-items: center; justify-content: center; color: white; font-size: 1.2rem; flex-shrink: 0; }
.recommendation-content h4 { font-size: 1.1rem; font-weight: 600; color: #2d3748; margin-bottom: 0.5rem; }
.recommendation-content p { color: #718096; line-height: 1.5; }
.recommendations { margin-top: 2rem; padding: 2rem; background: #f7fafc; border-radius: 12px; }
.recommendations h3 { display: flex; align-items: center; gap: 0.5rem; font-size: 1.5rem; font-weight: 600; color: #2d3748; margin-bottom: 1.5rem; }
.recommendations h3 i { color: #667eea; }`

// Recommendations returns the fixed list for the result. The risk list is used
// when the model flags risk or the percentage exceeds 50.
func Recommendations(prediction bool, percentage int) []Recommendation {
	if prediction || percentage > 50 {
		return append([]Recommendation(nil), riskRecommendations...)
	}
	return append([]Recommendation(nil), healthyRecommendations...)
}
