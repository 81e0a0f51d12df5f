// Termexplain explains terminal errors in plain English using LLM providers.
//
// Error text can be passed as arguments, piped via stdin, or produced by
// running a Python or JavaScript file. Explanations can be cached on disk and
// are reused until they expire.
//
// Usage:
//
//	termexplain "ModuleNotFoundError: No module named 'requests'"
//	cat error.log | termexplain           # explain piped output
//	termexplain --save "Permission denied" # cache the explanation
//	termexplain --file script.py          # run a file and explain failures
//	termexplain cache stats               # inspect the cache
//	termexplain hook install --shell zsh  # add the explain shell helper
package main
