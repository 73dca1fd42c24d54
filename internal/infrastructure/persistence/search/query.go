package search

// buildSearchQuery 构建检索查询体(纯函数,便于单独测试)
//
// 查询策略:
// 1. 空串或"*"退化为match_all(浏览全部)
// 2. 其余走bool/should组合:
//    - multi_match带字段权重(isbn^4 > title^3 > authors^2 > 其余)
//    - fuzziness=AUTO容忍拼写错误
//    - match_phrase_prefix支持边输入边搜的前缀匹配
//    minimum_should_match=1,命中任意一支即可
func buildSearchQuery(q string, from, size int) map[string]interface{} {
	body := map[string]interface{}{
		"from": from,
		"size": size,
	}

	if q == "" || q == "*" {
		body["query"] = map[string]interface{}{
			"match_all": map[string]interface{}{},
		}
		return body
	}

	body["query"] = map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []interface{}{
				map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     q,
						"fields":    []string{"ISBN^4", "Title^3", "Authors^2", "Description", "Categories", "Tags"},
						"fuzziness": "AUTO",
					},
				},
				map[string]interface{}{
					"match_phrase_prefix": map[string]interface{}{
						"Title": map[string]interface{}{
							"query": q,
						},
					},
				},
			},
			"minimum_should_match": 1,
		},
	}
	return body
}
