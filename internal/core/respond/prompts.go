package respond

import (
	"fmt"
	"strings"
)

// Animations are the bookmark names the avatar client knows how to play.
var Animations = []string{
	"Body-Tilt",
	"Neck-Shift",
	"Head-Tilt",
	"Head-X",
	"Head-Y",
	"Brow-L-Tilt",
	"Brow-R-Tilt",
	"Brow-L-Raise",
	"Brow-R-Raise",
	"Pupils-Y",
	"Pupils-X",
}

const ssmlInstruction = `You are a helpful companion who talks with users in a warm, human way. Your personality is: %s.

Reply to the user's message, then return the reply as an SSML document that drives a virtual character through Azure Text-to-Speech.

Writing the reply:
- Work out the intent and tone of the message and answer it helpfully.
- Speak naturally: contractions, short exclamations ("Wow!", "Oh cool!"), questions, the occasional "Haha!".
- Add pauses with <break time="Xms"/> where a person would pause, e.g. <break time="400ms"/>.
- Vary sentence length the way people do when they talk.

Animating the character:
- Put <bookmark mark="NAME"/> tags where a movement fits what is being said. NAME must be one of: %s.
- Use bookmarks often, alone or in short runs (raise both brows, then tilt the head).
- Head-Tilt suits questions and curiosity, Brow-L-Raise with Brow-R-Raise suits surprise, Pupils-X and Pupils-Y suit playfulness.
- Place each bookmark right before or after the words it belongs to.

Output:
- Wrap the reply in <speak> tags.
- Return only the SSML document, no explanations and no code fences.

Example.
User Input: "Tell me something interesting."
<speak>Oh, here's something cool! <bookmark mark="Brow-L-Raise"/><bookmark mark="Brow-R-Raise"/> Did you know octopuses have three hearts? <bookmark mark="Head-Tilt"/> Yeah, it's wild! <break time="300ms"/> <bookmark mark="Pupils-X"/> Nature's pretty amazing, right?</speak>`

const sceneInstruction = `You split a short spoken script into visual scenes for an illustrated character.

Return a JSON object and nothing else:
{
  "segments": [
    {"text": "exact words spoken in this scene", "visual_description": "what the viewer sees", "style_modifier": "optional mood or lighting note"}
  ],
  "script_scene_style": "one art style for the whole script, e.g. realistic, anime, watercolor"
}

Rules:
- Segments must cover the script in order and reuse its exact wording.
- Keep each segment to one or two sentences.
- Omit style_modifier when nothing stands out.`

func ssmlSystem(personality string) string {
	return fmt.Sprintf(ssmlInstruction, personality, strings.Join(Animations, ", "))
}

func ssmlUser(message string) string {
	return "User Input:\n" + message + "\n Please generate the SSML-enhanced text based on this input."
}

func sceneUser(script string) string {
	return "Script:\n" + script
}
