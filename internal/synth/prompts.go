package synth

const answerSystemPrompt = "You are a helpful educational assistant who always provides answers based on available context or general knowledge when needed."

const answerTemplate = `You are a student helper answering questions about the transcript of an educational video.

CONTEXT:
%s

QUESTION:
%s

INSTRUCTIONS:
1. Treat the context as your primary source.
2. When the context does not contain the answer, start with "While not explicitly covered in the video..." and answer from general knowledge.
3. Always give an answer, even when the context is thin.
4. Quote or cite examples, numbers and dates from the context when they help.
5. Keep the answer short and direct. Use bullet points for multi-part answers.

Answer:`

const summarySystemPrompt = "You create concise, informative summaries of educational videos."

const summaryTemplate = `Summarize this video transcript.

TRANSCRIPT:
%s

INSTRUCTIONS:
1. Write 100-150 words.
2. Open with a one or two sentence overview, then list 3-5 main points.
3. Use plain language.

Summary:`

const suggestSystemPrompt = "You create extremely concise but insightful educational questions."

const suggestTemplate = `Suggest follow-up questions for a student studying an educational video.

CONTEXT:
%s

RECENT CONVERSATION:
%s

INSTRUCTIONS:
1. Write exactly 3 short questions grounded in the context.
2. Put each question on its own line without numbering.
3. Do not repeat questions already asked in the conversation.

Questions:`

const noHistory = "No previous conversation"
