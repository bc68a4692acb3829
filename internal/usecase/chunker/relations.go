package chunker

import "github.com/kailas-cloud/lexdex/internal/domain/chunk"

// link adds previous/next, parent/child and sibling relationships.
// owners[i] is the section index of chunks[i]. Runs after every section is chunked.
func link(chunks []chunk.Chunk, owners []int, structure *DocumentStructure) {
	bySection := make(map[int][]int, len(structure.Sections))
	for i, s := range owners {
		bySection[s] = append(bySection[s], i)
	}

	for i := range chunks {
		var rels []chunk.Relationship
		if i > 0 {
			rels = append(rels, chunk.NewRelationship(chunk.Previous, chunks[i-1].ID))
		}
		if i < len(chunks)-1 {
			rels = append(rels, chunk.NewRelationship(chunk.Next, chunks[i+1].ID))
		}

		sec := &structure.Sections[owners[i]]

		if sec.Parent != NoParent {
			if ps := bySection[sec.Parent]; len(ps) > 0 {
				rels = append(rels, chunk.NewRelationship(chunk.Parent, chunks[ps[0]].ID))
			}
		}

		for _, child := range sec.Children {
			for _, k := range bySection[child] {
				rels = append(rels, chunk.NewRelationship(chunk.Child, chunks[k].ID))
			}
		}

		if sec.Parent != NoParent {
			for _, sib := range structure.Sections[sec.Parent].Children {
				if sib == owners[i] {
					continue
				}
				for _, k := range bySection[sib] {
					rels = append(rels, chunk.NewRelationship(chunk.Sibling, chunks[k].ID))
				}
			}
		}

		chunks[i].Relationships = rels
	}
}
