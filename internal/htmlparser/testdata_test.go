package htmlparser

// legacyTable is a seven column table in the editor's oldest layout.
const legacyTable = `
<table>
  <thead>
    <tr><th>Item</th><th>Qty needed/L</th><th>Unit</th><th>Qty needed</th><th>Unit</th><th>Amount used</th><th>Unit</th></tr>
  </thead>
  <tbody>
    <tr>
      <td><a onclick="Experiment.Section.Sample.view(42)"><span class="protVar protVarSampleField sampleFieldContent">Glucose</span></a></td>
      <td>5</td><td>g</td><td>10</td><td>g</td>
      <td><span class="protVar"><span>  12.5 </span></span></td>
      <td>ml</td>
    </tr>
  </tbody>
</table>`

// compactTable has no thead and three columns.
const compactTable = `
<table>
  <tr><td>Used sample:</td><td>Amount used</td><td>Unit</td></tr>
  <tr>
    <td><span class="protVar"><span class="sampleFieldContent"><a onclick="Experiment.Section.Sample.view(42)">Glucose</a></span></span></td>
    <td>0.0025</td>
    <td><span class="protVar">L</span></td>
  </tr>
</table>`

// explicitTable names its amount column "Used amount".
const explicitTable = `
<table>
  <thead>
    <tr><th>Item</th><th>Lot</th><th>Qty needed</th><th>Unit</th><th>Used amount</th><th>Unit</th><th>Remarks</th></tr>
  </thead>
  <tbody>
    <tr>
      <td><a onclick="Experiment.Section.Sample.view(7)">NaCl</a></td>
      <td>L-1</td><td>2</td><td>g</td><td>1.5</td><td>g</td><td>ok</td>
    </tr>
  </tbody>
</table>`

// unitlessTable matches identity and amount but has no unit column.
const unitlessTable = `
<table>
  <tr><td>Item</td><td>Amount used</td><td>Notes</td></tr>
  <tr><td><a onclick="Experiment.Section.Sample.view(9)">Agar</a></td><td>3</td><td>none</td></tr>
</table>`

// unrelatedTable is not a usage table.
const unrelatedTable = `
<table>
  <tr><td>Step</td><td>Description</td></tr>
  <tr><td>1</td><td>Mix</td></tr>
</table>`
