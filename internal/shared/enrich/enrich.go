// Package enrich はベストエフォートのデータ付加処理を提供します。
package enrich

// BestEffort は各要素にenrich関数を適用し、失敗した要素には
// fallback関数の結果を代わりに使用します。
// ポートフォリオ・ウォッチリスト・検索結果の「現在値で付加、失敗時は既定値」
// というパターンを一箇所に集約したものです。
func BestEffort[T, R any](items []T, fn func(T) (R, error), fallback func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		r, err := fn(item)
		if err != nil {
			r = fallback(item)
		}
		out = append(out, r)
	}
	return out
}
