package retrieval

import (
	"fmt"
	"strings"
)

// NoContextNotice is prepended to the question when retrieval found
// nothing, so the model (and the user) see that the answer is not
// backed by indexed content.
const NoContextNotice = "No se han encontrado documentos de apoyo para esta pregunta."

// BuildPrompt assembles the generation prompt from the user question
// and the retrieved fragments. With no fragments it produces a
// no-context prompt that states so explicitly instead of silently
// inviting the model to guess.
func BuildPrompt(question string, results []Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("%s\n\nPregunta del usuario: %s\n\nInstrucciones: Responde de forma precisa y profesional. Indica claramente que no dispones de documentación de apoyo.", NoContextNotice, question)
	}

	var context strings.Builder
	for _, r := range results {
		context.WriteString("- ")
		context.WriteString(r.Text)
		context.WriteByte('\n')
	}

	return fmt.Sprintf(`Contexto de la administración local:

%s
Pregunta del usuario: %s

Instrucciones: Responde de forma precisa y profesional basándote en el contexto proporcionado. Si la información no está completa en el contexto, indícalo claramente pero proporciona la mejor respuesta posible.`, context.String(), question)
}
