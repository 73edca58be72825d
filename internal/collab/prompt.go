package collab

import (
	"fmt"
)

const formatInstructions = `Input format:
__L0001__ >>> first original line
__L0002__ >>> second original line
__L0003__ >>> [BLANK]

Your output must follow this format exactly, one tag per input line:
__L0001__ <<< translated first line
__L0002__ <<< translated second line
__L0003__ <<<

Lyrics:
%s`

var styleBriefs = map[Style]string{
	StyleFaithful: `You are a professional lyrics translator. Translate the lyrics below into %s, staying faithful to their meaning and feeling.

Requirements:
1. Carry both the literal meaning and the subtext
2. Keep the emotional tone of the original
3. Write natural, fluent %[1]s
4. Keep every line paired with its original`,

	StyleMelodramaticPoet: `You are a passionate poet who translates song lyrics. Render the lyrics below in %s with a poetic, dramatic voice.

Style:
1. Prefer literary, evocative wording
2. Heighten the emotion and tension
3. Use figures of speech where they fit
4. Keep every line paired with its original`,

	StyleMachineClassic: `You are a precise, classical translation engine. Translate the lyrics below into %s literally.

Principles:
1. Translate line by line, keeping the original structure
2. Prefer common, standard vocabulary
3. Keep the output concise
4. Add no decoration or explanation`,
}

// Prompt builds the model prompt for style around the encoded lyrics.
func Prompt(style Style, encoded, targetLang string) (string, error) {
	if style == "" {
		style = StyleFaithful
	}
	brief, ok := styleBriefs[style]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}
	return fmt.Sprintf(brief, targetLang) + "\n\n" + fmt.Sprintf(formatInstructions, encoded) + "\n\nTranslation:", nil
}
