package enrich

import (
	"fmt"

	"news-agent/internal/extract"
	"news-agent/internal/source"
)

const articleSystemPrompt = `You are a professional article analyzer. Extract key information from web articles with high accuracy.

Your task is to analyze HTML content and provide structured information about the article.
Focus on accuracy and relevance. If information is not clear, indicate uncertainty.`

func articleUserPrompt(art extract.Article) string {
	return fmt.Sprintf(`Analyze this article from %s

HTML Content:
%s

Current extracted data:
- Title: %s
- Summary: %s
- Author: %s
- Image: %s

Please provide improved extraction in this exact JSON format:
{
    "title": "Clear, descriptive article title (max 150 chars)",
    "summary": "Concise 2-3 sentence summary of main points (max 300 chars)",
    "author": "Author name or 'Unknown' if not found",
    "category": "Article category (news, tech, politics, etc.)",
    "key_points": ["Key point 1", "Key point 2", "Key point 3"],
    "confidence": "high/medium/low based on content clarity",
    "article_type": "news/opinion/analysis/blog/other"
}

Only return the JSON, no other text.`,
		art.URL, art.HTML, orUnknown(art.Title), orUnknown(art.Summary), orUnknown(art.Author), orUnknown(art.Image))
}

const messageSystemPrompt = `You are a message analyzer that provides concise analysis of text messages.
Provide objective analysis focusing on content, sentiment, and key topics.`

func messageUserPrompt(item source.RawItem) string {
	return fmt.Sprintf(`Analyze this message from %s:

Message: "%s"

Provide analysis in this exact JSON format:
{
    "summary": "One sentence summary of the message (max 100 chars)",
    "sentiment": "positive/negative/neutral/mixed",
    "topics": ["topic1", "topic2", "topic3"],
    "importance": "high/medium/low",
    "message_type": "question/announcement/discussion/link_share/other",
    "key_words": ["word1", "word2", "word3"]
}

Only return the JSON, no other text.`, item.Sender, item.Text)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
