package shell

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"nandsim/transient"
	"nandsim/types"

	"github.com/pkg/errors"
)

func writeJSON(w io.Writer, v any) error { return json.NewEncoder(w).Encode(v) }

// event 推送给页面的发布结果，不含采样序列
type event struct {
	Generation uint64             `json:"generation"`
	ID         string             `json:"id,omitempty"`
	Params     types.Parameters   `json:"params"`
	Summary    *transient.Summary `json:"summary,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// writeEvent 写出一条 server-sent event
func writeEvent(w io.Writer, res Result) error {
	ev := event{Generation: res.Generation, Params: res.Params}
	if res.Err != nil {
		ev.Error = res.Err.Error()
	} else {
		ev.ID = res.Record.ID
		ev.Summary = &res.Record.Summary
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}
	_, err = fmt.Fprintf(w, "event: result\ndata: %s\n\n", data)
	return err
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>nandsim</title>
<style>
body { font-family: sans-serif; margin: 20px; }
.slider { display: flex; align-items: center; gap: 12px; margin: 6px 0; }
.slider label { width: 180px; }
.slider output { width: 90px; }
#summary { font-family: monospace; white-space: pre; }
</style>
</head>
<body>
<h2>NAND charge redistribution (the bump)</h2>
<img id="plot" width="900" alt="plot">
<form id="params">
  <div class="slider">
    <label for="variant">Variant</label>
    <select id="variant" name="variant">
    {{range .Variants}}<option value="{{.}}"{{if eq . $.Variant}} selected{{end}}>{{.}}</option>{{end}}
    </select>
  </div>
  {{range .Sliders}}
  <div class="slider">
    <label for="{{.Name}}">{{.Label}}, {{.Unit}}</label>
    <input type="range" id="{{.Name}}" name="{{.Name}}" data-suffix="{{.Suffix}}"
      min="{{.Min}}" max="{{.Max}}" step="{{.Step}}" value="{{.Value}}">
    <output id="{{.Name}}-value">{{.Value}}</output>
  </div>
  {{end}}
</form>
<p><a href="/last/chart">interactive chart</a> · <a href="/api/last.csv">csv</a></p>
<div id="summary"></div>
<script>
const form = document.getElementById("params");
function query() {
  const q = new URLSearchParams();
  q.set("variant", form.variant.value);
  for (const input of form.querySelectorAll("input[type=range]")) {
    q.set(input.name, input.value + input.dataset.suffix);
    document.getElementById(input.name + "-value").textContent = input.value;
  }
  return q.toString();
}
function submit() {
  fetch("/api/submit?" + query(), {method: "POST"});
}
const events = new EventSource("/api/events");
events.addEventListener("result", e => {
  const res = JSON.parse(e.data);
  const summary = document.getElementById("summary");
  if (res.error) {
    summary.textContent = res.error;
    return;
  }
  document.getElementById("plot").src = "/last.png?g=" + res.generation;
  summary.textContent = JSON.stringify(res.summary, null, 2);
});
events.addEventListener("open", submit, {once: true});
form.addEventListener("input", e => {
  if (e.target.name === "variant") {
    window.location.search = "variant=" + form.variant.value;
    return;
  }
  submit();
});
</script>
</body>
</html>
`))
