package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
	"github.com/custodia-labs/caseforest/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

const promptExt = ".txt"

// PromptStore loads generator prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSummary: `ユーザーと親切なアシスタント間の対話、および関連する検索結果を踏まえて、アシスタントの最終的な回答をNotebookLM風の日本語で作成してください。
検索クエリ: {{query}}
検索結果を基に、以下の条件を満たす回答を生成してください。
回答は以下の条件を満たす必要があります。
1. 検索結果から関連性の高い情報を最大3件活用し、**「検索結果によると、〇〇〇について、下記企業の事例が挙げられます。」**という形で回答を始め、〇〇〇には、検索クエリを参考にした適切な単語を挿入する。
2. 企業それぞれ必ず1文で結果を回答する。
3. 検索結果にない新しい情報は一切導入しない。
4. 可能な限り検索結果から直接引用し、全く同じ表現を使用する。引用部分は「」（鉤括弧）で囲み、文末に出典（検索結果の URL を含めない）を明記する。出典部は（）（丸括弧）で囲みます。
5. 各項目は箇条書き形式で記述する。
6. 文頭に「-」記号を付ける。
7. Googleのウェブベースの日本語に沿った、カジュアルでわかりやすい文体を使用する。
8. 企業名は太字で強調表示する。
9. 専門用語については、可能な限り一般的な言葉で言い換えるか、括弧内に簡潔な説明を加える。
10. 可能な限り、具体的な使用例や事例、数値データを含めて説明する。
11. 検索結果に含まれる情報の日付に注意し、最新の情報を優先して使用する。古い情報を使用する場合は、その旨を明記する（例：2023年7月時点の情報では...）。
12. 検索結果に複数の観点が含まれる場合は、それらを公平に扱い、バランスの取れた回答を心がける。
13. 個人情報や機密情報が含まれている可能性がある場合は、それらを慎重に扱い、必要に応じて一般化または匿名化する。
14. 出力にHTMLタグを含めない。
15. 各文末で改行すること。
16. 検索結果が1件以上存在する場合、要約結果から推薦される次の検索単語候補を 3 つ生成し、以下のフォーマットで追記する。
{"recommendations": ["検索ワード1", "検索ワード2" , "検索ワード3"]}
17. 検索結果が1件以上存在する場合、回答の最後に、「質問の意図とずれている場合は、遠慮なく別の表現で質問してくださいね。」という一文を追加する。
18. 検索結果が0件の場合は「該当する結果を取得できませんでした、別の表現で質問してみてください」と回答する。
19. 検索結果に含まれる法人名については正しいものを利用する。
20. 検索結果に含まれる法人名が明確でない場合は省略を行い検索結果の概要を説明したうえで、「詳細は検索結果を確認してください」で回答を終えること。
21. 要約結果から Google Drive のURL (https://drive. で始まるURL)、及び Google Cloud Storage のURL (https://storage.) で始まる URL を削除する。
22. 検索結果に事例が含まれない場合はファイルのタイトル（拡張子を除外）を太字表記し、内容から短い要約を作成し、「詳細は検索結果を確認してください」で回答を終えること。

なお、検索結果のタイトルとURLは、===== で囲まれたプロンプト末尾にある。

=====`,

	driven.PromptBackendPreamble: `詳細に説明して`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.caseforest/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Falls back to the embedded default if the file can't be read.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Double-check so a concurrent load is not overwritten
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Watch reloads prompts whenever a prompt file in the directory changes.
// It blocks until ctx is cancelled. The directory is watched rather than the
// files so editors that replace files on save are handled.
func (s *PromptStore) Watch(ctx context.Context) error {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return s.initErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.promptDir); err != nil {
		return fmt.Errorf("watch %s: %w", s.promptDir, err)
	}
	logger.Debug("Watching prompts in %s", s.promptDir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, promptExt) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				logger.Info("Prompt changed: %s (%s), reloading", filepath.Base(event.Name), event.Op)
				s.Reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

// initialise creates the prompt directory and default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+promptExt)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(path, []byte(content+"\n"), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+promptExt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return nil
	}

	content := `# caseforest prompts

This directory contains the prompts used when summarising search results.

## Files

- ` + "`summary.txt`" + ` - Instructions for the summary generator
- ` + "`backend_preamble.txt`" + ` - Preamble sent with backend summary requests

## Customisation

Edit any file to change generator behaviour. Running servers pick up
changes without a restart.

## Placeholders

- ` + "`{{query}}`" + ` - The user's search query. When absent, the query is
  prepended to the prompt.

The cited results are appended after the prompt, one per line, followed by
a closing ` + "`=====`" + ` line. End the summary prompt with an opening ` + "`=====`" + `.
`
	return os.WriteFile(path, []byte(content), 0600)
}
