package open

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/wca/internal/index"
)

// Message opens the export file of transcript key in $EDITOR, positioned
// on the line where message msgID starts.
func Message(db *index.DB, key string, msgID int) error {
	t, err := db.GetTranscriptByKey(key)
	if err != nil {
		return fmt.Errorf("get transcript: %w", err)
	}
	if t == nil {
		return fmt.Errorf("%w: %s", index.ErrTranscriptNotFound, key)
	}

	if _, err := os.Stat(t.FilePath); err != nil {
		return fmt.Errorf("file not found: %s", t.FilePath)
	}

	lineNum := 1
	if msgID >= 0 {
		msgs, err := db.GetMessages(key)
		if err == nil {
			for _, m := range msgs {
				if m.MsgID == msgID {
					lineNum = m.LineNumber
					break
				}
			}
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	args := EditorArgs(editor, t.FilePath, lineNum)
	cmd := exec.Command(editor, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// EditorArgs builds the argument list that jumps editor to lineNum.
func EditorArgs(editor, filePath string, lineNum int) []string {
	switch {
	case strings.Contains(editor, "vim"), strings.Contains(editor, "less"), strings.Contains(editor, "nano"):
		return []string{"+" + strconv.Itoa(lineNum), filePath}
	case strings.Contains(editor, "code"):
		return []string{"--goto", filePath + ":" + strconv.Itoa(lineNum)}
	case strings.Contains(editor, "emacs"):
		return []string{"+" + strconv.Itoa(lineNum), filePath}
	default:
		return []string{filePath}
	}
}
