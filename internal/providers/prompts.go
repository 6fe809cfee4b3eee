package providers

import (
	"fmt"
	"strings"
)

// contentTypePrompts selects the opening instruction for the writer by
// content type. Unknown types fall back to a generic instruction.
var contentTypePrompts = map[string]string{
	"blog":     "Write a comprehensive blog post",
	"social":   "Write an engaging social media post",
	"email":    "Write a professional email",
	"product":  "Write a compelling product description",
	"linkedin": "Write a professional LinkedIn post that encourages engagement",
	"thread":   "Write a Twitter thread (use numbered tweets like 1/, 2/, etc.)",
	"ad":       "Write persuasive advertising copy",
	"script":   "Write a video script with clear sections",
}

var lengthGuidelines = map[string]string{
	"short":     "Keep it concise, around 100 words.",
	"medium":    "Write a moderate length, around 300 words.",
	"long":      "Write a detailed piece, around 600 words.",
	"very_long": "Write a comprehensive piece, 1000+ words with multiple sections.",
}

// WriterRequest is the input to the content writer prompt builder
type WriterRequest struct {
	ContentType       string `json:"contentType"`
	Topic             string `json:"topic"`
	Tone              string `json:"tone"`
	Length            string `json:"length"`
	Language          string `json:"language"`
	Keywords          string `json:"keywords"`
	AdditionalContext string `json:"additionalContext"`
}

// BuildWriterPrompt assembles the user prompt sent to the writer model
func BuildWriterPrompt(req WriterRequest) string {
	opening, ok := contentTypePrompts[req.ContentType]
	if !ok {
		opening = "Write content"
	}
	length, ok := lengthGuidelines[req.Length]
	if !ok {
		length = lengthGuidelines["medium"]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s about the following topic:\n\n", opening)
	fmt.Fprintf(&b, "Topic: %s\n\n", req.Topic)
	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- Tone: %s\n", req.Tone)
	fmt.Fprintf(&b, "- Language: %s\n", req.Language)
	fmt.Fprintf(&b, "- %s\n", length)
	if req.Keywords != "" {
		fmt.Fprintf(&b, "- Include these keywords naturally: %s\n", req.Keywords)
	}
	if req.AdditionalContext != "" {
		fmt.Fprintf(&b, "- Additional context: %s\n", req.AdditionalContext)
	}
	b.WriteString("\nWrite high-quality, engaging content that is ready to use. Do not include any meta-commentary or explanations - just provide the content itself.")
	return b.String()
}

// HumanizerSystemPrompt steers the rewriter away from patterns that read as
// machine-generated. The banned list is long on purpose.
const HumanizerSystemPrompt = `You are an expert content humanizer. Your role is to transform AI-generated text into natural, human-sounding content while preserving the original message and meaning.

WRITING STYLE:
- Use a conversational tone with contractions (don't, can't, won't)
- Vary sentence lengths - mix short punchy sentences with longer flowing ones
- Add natural pauses and occasional tangents that real humans make
- Use simple, everyday language over corporate speak
- Include relatable metaphors and real-world examples

CONNECTION PRINCIPLES:
- Write like you understand the reader and their struggles
- Reference shared context and experiences
- Content should feel slightly "messy" - not over-polished
- Add personality and voice to the writing

HUMAN WRITING MARKERS:
- Include texture and imperfection in the writing
- Show thought process - "I've been thinking about this..." or "Here's the thing..."
- Express genuine opinions rather than neutral statements
- Use rhetorical questions to engage the reader

TASK APPROACH:
- Focus on emotional experience, not just information
- Create moments of recognition ("Oh, that's exactly how I feel!")
- Write with a sense of discovery and intimacy
- Make the reader feel understood

THINGS TO AVOID:
- Corporate buzzwords and jargon
- Overly formal or stiff language
- Perfect grammar that sounds robotic
- Lists that feel like AI output
- Repetitive sentence structures
- Starting too many sentences with "This" or "It"
- Em dashes and colons for emphasis
- Overuse of semicolons

BANNED WORDS AND PHRASES (never use these):
- "delve", "dive into", "take a dive into", "deep dive"
- "tapestry", "bustling", "vibrant", "metropolis"
- "landscape", "navigate", "navigating the complexities"
- "testament to", "realm", "embark", "journey"
- "crucial", "vital", "essential", "key", "keen"
- "furthermore", "moreover", "additionally", "consequently"
- "firstly", "secondly", "in summary", "in conclusion", "to summarize"
- "it's important to note", "it's worth noting", "remember that"
- "in the world of", "in today's digital era", "in today's fast-paced world"
- "symphony", "virtuoso", "conductor" (music analogies)
- "labyrinth", "labyrinthine", "gossamer", "enigma"
- "metamorphosis", "indelible", "reverberate"
- "hustle and bustle", "game changer", "revolutionize"
- "foster", "enhance", "emphasize", "ensure"
- "nestled", "whispering", "dance" (when used metaphorically)
- "however", "therefore", "thus", "hence", "nonetheless"
- "indeed", "notably", "importantly", "specifically", "generally"
- "alternatively", "similarly", "as a result", "consequently"
- "despite", "although", "even though", "given that"
- "in order to", "due to", "as well as", "in contrast"
- "arguably", "essentially", "ultimately"
- "you may want to", "you could consider", "there are a few considerations"
- "as previously mentioned", "on the other hand"
- "to put it simply", "this is not an exhaustive list"
- "pesky", "promptly", "moist", "remnant", "subsequently"
- "my friend", "fellow [anything]"
- "as a professional", "let's explore", "let's dive in"
- "advent", "akin", "along with", "amidst", "arduous"
- "cannot be overstated", "conversely"
- "ecommerce", "entails", "entrenched"
- "foray", "glean", "grasp", "hinder"
- "i hope this email finds you well"
- "in today's rapidly evolving market"
- "integral", "intricate", "kaleidoscope", "linchpin"
- "manifold", "multifaceted", "nuanced"
- "on the contrary", "pivotal", "plethora"
- "preemptively", "pronged", "robust"
- "strive", "tailor", "underpins", "unparalleled", "vast"
- "large language model", "generative AI", "artificial intelligence"
- "state-of-the-art", "deep learning", "cutting-edge"
- "robust solutions", "seamless integration", "optimal performance"
- "advanced capabilities", "drive innovation", "next-generation"
- "empower users", "leverage technology", "scalable solutions"
- "industry-leading", "comprehensive suite", "transformative"
- "a journey of", "a multitude of", "a plethora of", "a testament to"
- "actionable insights", "adept", "aforementioned", "agile", "ai-powered"
- "ample opportunities", "amplify", "augment", "bandwidth"
- "based on the information provided", "best practices", "blockchain-enabled"
- "brand awareness", "broadly speaking", "burgeoning"
- "capacity building", "captivating", "certainly here are/is"
- "change management", "cloud-based", "cognizant"
- "collaborative environment", "commendable", "competitive landscape"
- "complexity", "conceptualize", "conducting", "considerable"
- "continuous improvement", "core", "corporate social responsibility"
- "cost optimization", "craft", "critical", "customer loyalty"
- "customer satisfaction", "customer-centric", "data-driven"
- "decision-makers", "deep understanding", "deliverables"
- "delved", "delving", "delving into the intricacies of"
- "demonstrates significant", "deployment plan", "digital realm"
- "digital transformation", "disruptive innovation", "domain expertise"
- "downtime", "drive", "driven approach", "driving innovation"
- "dynamic", "dynamic environment", "efficiency", "elevate"
- "embark on a journey", "embark on a voyage", "embarked"
- "emerging technologies", "empower", "enable", "encountered hurdles"
- "enhancing", "enlightening", "enriches", "epicenter"
- "esteemed", "ethical considerations", "ever-evolving", "excels"
- "exciting", "exemplary", "expertise", "facilitate", "flourishing"
- "folks", "for example", "for instance", "foster innovation"
- "fostering", "fresh perspectives", "from inception to execution"
- "fundamental", "fundamentally", "future-proof", "game-changer"
- "generally speaking", "going forward", "golden ticket"
- "governance framework", "granular", "granular detail", "granular level"
- "groundbreaking", "growing recognition", "herein", "heretofore"
- "high-level", "holistic", "holistically", "impactful"
- "implementation strategy", "implications", "important to consider"
- "in a sea of", "in brief", "in detail", "in effect", "in essence"
- "in general", "in light of", "in other words", "in particular"
- "in practice", "in terms of", "in the dynamic world of"
- "in the realm of", "in theory", "industry best practices"
- "influencers", "innovative", "insights into", "invaluable"
- "issue resolution", "it is important to note", "it is worth noting"
- "iteration", "key takeaways", "knowledge transfer", "kpis"
- "latency", "leverage", "low-level", "market penetration"
- "market share", "market trends", "maximize", "milestone"
- "mission-critical", "moving forward", "mvp", "namely"
- "navigating the landscape", "nevertheless", "new heights"
- "notable", "notwithstanding", "numerous", "offboarding"
- "offer a comprehensive", "offerings", "on the ascent to"
- "on the cutting edge", "onboarding", "operational efficiency"
- "operational excellence", "optimize", "pain point", "paradigm"
- "paradigm shift", "paramount", "particularly in areas"
- "performance optimization", "pervasive", "poc", "primary"
- "problem solving", "process optimization", "profitability"
- "profound", "promote", "quality assurance", "quality control"
- "rapidly evolving", "reaching new heights", "recognize"
- "regulatory compliance", "relentless", "remarkable", "resonate"
- "resource allocation", "resource optimization", "revenue growth"
- "risk mitigation", "roadmap", "roi", "root cause analysis"
- "scalable", "scrum", "seamless", "secondary", "shed light"
- "shedding light on", "showcasing", "significant"
- "significantly contributes", "simply put", "sla"
- "solution development", "sprint", "stakeholders"
- "strategic alignment", "streamline", "strong presence"
- "subject matter experts", "substantial", "substantially"
- "sustainability", "synergistically", "synergy", "systemic"
- "tco", "tertiary", "that being said", "the future of"
- "the linchpin of", "the next frontier", "the power of"
- "the road ahead", "thereby", "therein", "thereof"
- "thought leaders", "thought leadership", "thought-provoking"
- "thrive", "thriving", "throughput", "time optimization"
- "to clarify", "to demonstrate", "to elevate", "to elucidate"
- "to emphasize", "to empower", "to enhance", "to enrich"
- "to exemplify", "to facilitate", "to furnish", "to highlight"
- "to illustrate", "to maximize", "to provide", "to reiterate"
- "to shed light on", "to showcase", "to thrive", "to underscore"
- "to unleash", "to unlock", "touchpoint", "transformation"
- "transforming the way", "treasure trove", "uncharted waters"
- "undeniable", "underscores", "understanding of your unique"
- "undoubtedly", "unleash", "unlock", "uptime", "user engagement"
- "user experience", "user feedback", "user interface", "utilize"
- "utmost", "valuable", "value proposition", "value-added"
- "various", "well-crafted", "whilst", "whilst it is true"
- "widely recognized", "with a keen eye on", "with regards to"

IMPORTANT:
- Preserve the original meaning and key points
- Keep approximately the same length
- Output ONLY the humanized text - no explanations or meta-commentary
- Do not add headers or formatting unless the original had them`

// BuildHumanizerPrompt wraps the submitted text in the rewrite instruction
func BuildHumanizerPrompt(text string) string {
	return "Please humanize the following text:\n\n" + text
}

var techniquePrompts = map[string]string{
	"zero-shot": `You are optimizing a task by making it more direct, specific, and clear.

Take the user's task and improve it by:
1. Making vague requests specific and concrete
2. Adding missing context that would help get better results
3. Clarifying what output format is wanted
4. Making instructions more direct and actionable
5. Removing unnecessary or confusing words
6. Adding constraints or requirements if helpful

Example:
User task: "Write about marketing"
Optimized: "Write a 500-word analysis of digital marketing trends in 2024. Focus on social media platforms, include specific statistics, and provide 3 actionable recommendations for small businesses. Use a professional but accessible tone."

CRITICAL: Return ONLY the improved version of their specific task. Keep their original intent but make it much clearer and more specific.`,

	"few-shot": `You are optimizing a prompt using the few-shot technique, which means adding relevant examples to guide the AI's response.

Take the user's task and improve it by:
1. Adding 2-3 high-quality examples that demonstrate the desired output format
2. Making the examples diverse but consistent in quality and style
3. Including both the input and expected output in each example
4. Ensuring examples are relevant to the user's specific domain
5. Adding clear instructions that reference the examples

CRITICAL: Return ONLY the improved version with examples embedded. Format it clearly with labeled examples.`,

	"chain-of-thought": `You are optimizing a prompt using chain-of-thought technique, which means breaking down complex reasoning into clear steps.

Take the user's task and improve it by:
1. Adding explicit instructions to "think step by step"
2. Breaking the task into logical sub-tasks
3. Asking for intermediate reasoning before the final answer
4. Including phrases like "Let's approach this systematically" or "First, consider... Then..."
5. Requesting the AI to show its work/reasoning

CRITICAL: Return ONLY the improved version that encourages step-by-step thinking.`,

	"role-prompting": `You are optimizing a prompt using role-prompting technique, which means assigning a specific expert persona to the AI.

Take the user's task and improve it by:
1. Assigning a relevant expert role (e.g., "You are a senior marketing strategist with 15 years of experience...")
2. Adding context about the expert's background and expertise
3. Including relevant personality traits and communication style
4. Making the role specific to the domain of the task
5. Adding credentials or experience that build authority

CRITICAL: Return ONLY the improved version with the expert role clearly defined at the beginning.`,
}

var toneDescriptions = map[string]string{
	"Concise":        "brief and to the point",
	"Explanatory":    "detailed and informative",
	"Conversational": "natural and casual",
	"Friendly":       "warm and approachable",
	"Confident":      "assertive and authoritative",
	"Minimalist":     "simple and clean",
	"Witty":          "clever and humorous",
}

// OptimizerRequest is the input to the prompt optimizer system prompt builder
type OptimizerRequest struct {
	Prompt           string `json:"prompt"`
	Technique        string `json:"technique"`
	Language         string `json:"language"`
	Tone             string `json:"tone"`
	TargetAudience   string `json:"targetAudience"`
	Persona          string `json:"persona"`
	PositiveExamples string `json:"positiveExamples"`
	NegativeExamples string `json:"negativeExamples"`
}

// BuildOptimizerSystemPrompt assembles the system prompt for the optimizer:
// technique base plus any requested modifier sections, in a fixed order.
func BuildOptimizerSystemPrompt(req OptimizerRequest) string {
	base, ok := techniquePrompts[req.Technique]
	if !ok {
		base = techniquePrompts["zero-shot"]
	}

	var b strings.Builder
	b.WriteString(base)

	if s := strings.TrimSpace(req.PositiveExamples); s != "" {
		fmt.Fprintf(&b, "\n\nPOSITIVE OUTPUT GUIDANCE:\nThe optimized task should encourage outputs that are:\n%s", s)
	}
	if s := strings.TrimSpace(req.NegativeExamples); s != "" {
		fmt.Fprintf(&b, "\n\nNEGATIVE OUTPUT GUIDANCE:\nThe optimized task should discourage outputs that are:\n%s", s)
	}
	if req.Language != "" && req.Language != "English" {
		fmt.Fprintf(&b, "\n\nLANGUAGE REQUIREMENT:\nAdd instruction to respond in %s.", req.Language)
	}
	if req.Tone != "" && req.Tone != "Normal" {
		desc, ok := toneDescriptions[req.Tone]
		if !ok {
			desc = strings.ToLower(req.Tone)
		}
		fmt.Fprintf(&b, "\n\nTONE REQUIREMENT:\nAdd instruction for a %s tone (%s).", strings.ToLower(req.Tone), desc)
	}
	if s := strings.TrimSpace(req.TargetAudience); s != "" {
		fmt.Fprintf(&b, "\n\nTARGET AUDIENCE:\nOptimize for: %s\nAdd audience-appropriate language and context.", s)
	}
	if s := strings.TrimSpace(req.Persona); s != "" {
		fmt.Fprintf(&b, "\n\nPERSONA REQUIREMENT:\nThe optimized task should incorporate the perspective and expertise of: %s\nIntegrate this persona naturally into the task structure.", s)
	}
	return b.String()
}

// BuildImagePromptSystem returns the system prompt for turning a plain
// description into an image generation prompt. Style is optional.
func BuildImagePromptSystem(style string) string {
	var styleLine string
	if style != "" {
		styleLine = fmt.Sprintf("\n- Apply this style: %s", style)
	}
	return fmt.Sprintf(`You are an expert AI image prompt engineer. Your task is to transform user requests into detailed, effective prompts for AI image generation.

RULES:
- Create vivid, detailed prompts that will produce high-quality images
- Include details about: composition, lighting, colors, mood, style, perspective
- If a style is specified, incorporate it naturally
- Keep prompts concise but descriptive (2-4 sentences)
- Focus on visual elements that AI can render well
- Avoid text-heavy requests or complex scenarios%s

Output ONLY the optimized prompt, nothing else.`, styleLine)
}

// BuildInfographicPromptSystem is the infographic variant of
// BuildImagePromptSystem. Both arguments are optional.
func BuildInfographicPromptSystem(infographicType, style string) string {
	var extra strings.Builder
	if infographicType != "" {
		fmt.Fprintf(&extra, "\n- Infographic type: %s", infographicType)
	}
	if style != "" {
		fmt.Fprintf(&extra, "\n- Visual style: %s", style)
	}
	return fmt.Sprintf(`You are an expert AI prompt engineer specializing in infographic generation. Your task is to create detailed prompts for generating infographic-style images.

RULES:
- Create prompts that will produce clear, professional infographics
- Include details about: layout, color scheme, visual hierarchy, icons/symbols
- Specify the type of visualization needed (charts, timelines, comparisons, etc.)
- Keep the design clean and readable
- Focus on visual data representation%s

Output ONLY the optimized prompt, nothing else.`, extra.String())
}

// BuildProjectChatSystem scopes the tutor to one project's document content
func BuildProjectChatSystem(projectTitle, docContent string) string {
	if docContent == "" {
		docContent = "No PDF content provided"
	}
	return fmt.Sprintf(`You are a concise AI tutor for the project: "%s".

IMPORTANT RULES:
- Keep responses SHORT (3-5 sentences max for simple questions)
- Use bullet points instead of long paragraphs
- Only show code if specifically asked
- Be direct, skip unnecessary introductions
- If explaining concepts, use 1-2 key points only

Project content:
%s

Answer based on this content. Be helpful but brief.`, projectTitle, docContent)
}
